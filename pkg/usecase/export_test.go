package usecase

// DecideFrom is exported for testing
var DecideFrom = decideFrom

// DetectDebates is exported for testing
var DetectDebates = detectDebates

// SynthesizeDimension is exported for testing
var SynthesizeDimension = synthesizeDimension

// OverallScore is exported for testing
var OverallScore = overallScore

// UnifyPivots is exported for testing
var UnifyPivots = unifyPivots

// ExtractRisks is exported for testing
var ExtractRisks = extractRisks

// GenerateExperiments is exported for testing
var GenerateExperiments = generateExperiments

// FindMinorityReport is exported for testing
var FindMinorityReport = findMinorityReport

// RefineProposal is exported for testing
var RefineProposal = refineProposal

// RoundScore is exported for testing
var RoundScore = roundScore
