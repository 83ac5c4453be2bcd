package models

// AnalysisStatus represents the terminal status of a generation loop run
type AnalysisStatus string

const (
	AnalysisValidated AnalysisStatus = "validated"
	AnalysisFlagged   AnalysisStatus = "flagged"
	AnalysisRejected  AnalysisStatus = "rejected"
)
