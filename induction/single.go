package induction

import "context"

// SingleScanFlow is the simpler capture flow for identifiers that do not
// warrant dual-scan confirmation: validate once, accept immediately.
type SingleScanFlow struct {
	Validator  ScanValidator
	OnAccepted func(identifier string)
}

// HandleScan validates one scan and, on success, hands the normalized
// identifier to OnAccepted. The validator's error is returned as-is so
// the caller can surface it to the operator.
func (f *SingleScanFlow) HandleScan(ctx context.Context, event ScanEvent) error {
	if err := f.Validator.Validate(ctx, event.Value); err != nil {
		return err
	}
	if f.OnAccepted != nil {
		f.OnAccepted(NormalizeScan(event.Value))
	}
	return nil
}
