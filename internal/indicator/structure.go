package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-structure/internal/types"
	"github.com/rxtech-lab/argo-structure/pkg/errors"
)

// StructureAggregator confirms divergences with crosses.
// TG marks the first bearish cross within ConfirmWindow rows of a top
// divergence; BG marks the first low-zone or secondary cross within the window
// of a bottom divergence. The window includes the divergence row itself.
type StructureAggregator struct {
	confirmWindow int
}

// NewStructureAggregator creates a new aggregator with default configuration.
func NewStructureAggregator() Stage {
	return &StructureAggregator{confirmWindow: DefaultConfig().ConfirmWindow}
}

// Name returns the name of the stage.
func (s *StructureAggregator) Name() types.IndicatorType {
	return types.IndicatorTypeStructure
}

// Requires returns the stages whose columns are read.
func (s *StructureAggregator) Requires() []types.IndicatorType {
	return []types.IndicatorType{types.IndicatorTypeCross, types.IndicatorTypeDivergence}
}

// Config sets the confirmation window.
func (s *StructureAggregator) Config(cfg Config) error {
	if cfg.ConfirmWindow < 0 {
		return errors.Newf(errors.ErrCodeInvalidParameter, "confirmWindow must not be negative, got %d", cfg.ConfirmWindow)
	}

	s.confirmWindow = cfg.ConfirmWindow

	return nil
}

// Apply sets TG and BG. Both are evaluated independently.
func (s *StructureAggregator) Apply(table *Table) error {
	for _, div := range table.Divergences {
		top := div.Kind.Top()

		end := min(table.Len()-1, div.Index+s.confirmWindow)
		for t := div.Index; t <= end; t++ {
			cross := table.Rows[t].Cross
			if cross.IsNone() {
				continue
			}

			kind := cross.Unwrap()
			if top && kind != types.CrossKindBearish {
				continue
			}

			if !top && !kind.Bullish() {
				continue
			}

			structure := &table.Rows[t].Structure
			if structure.ConfirmsIndex.IsNone() {
				structure.ConfirmsIndex = optional.Some(div.Index)
			}

			if top {
				structure.TG = true
			} else {
				structure.BG = true
			}

			break
		}
	}

	return nil
}
