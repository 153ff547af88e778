package mocks

//go:generate mockgen -destination=./mock_provider.go -package=mocks github.com/rxtech-lab/argo-structure/pkg/marketdata/provider Provider
//go:generate mockgen -destination=./mock_recorder.go -package=mocks github.com/rxtech-lab/argo-structure/internal/recorder Recorder
