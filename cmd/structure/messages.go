package main

import "github.com/rxtech-lab/argo-structure/internal/service"

// AnalysisLoadedMsg carries a finished analysis.
type AnalysisLoadedMsg struct {
	Analysis *service.Analysis
}

// AnalysisErrorMsg reports a failed load.
type AnalysisErrorMsg struct {
	Ticker string
	Err    error
}
