package neuralnet

// Error is a sentinel error kind. Call sites add context with errors.Wrap and
// callers compare with errors.Is or errors.Cause.
type Error struct{ string }

func (err Error) Error() string {
	return err.string
}

var (
	ErrDimensionMismatch    = Error{"dimension mismatch"}
	ErrInvalidTopology      = Error{"invalid topology"}
	ErrEmptyDataset         = Error{"empty dataset"}
	ErrCorruptParameterFile = Error{"corrupt parameter file"}
	ErrMissingParameterFile = Error{"missing parameter file"}
	ErrNumericInstability   = Error{"numeric instability"}
	ErrOutOfOrder           = Error{"training step out of order"}
	ErrInvalidBeta          = Error{"beta must be positive"}
	ErrNotEnoughSamples     = Error{"not enough samples"}
	ErrUnknownKind          = Error{"unknown model kind"}
)
