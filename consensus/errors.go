package consensus

import "errors"

// Fatal-class sentinel errors. Each is logged at logrus.FatalLevel, which
// exits the process after the logrus_sentry hook has had a chance to ship
// the record.
var (
	errPendingBlockAlreadyExists = errors.New("consensus: begin_block called with a pending block already in flight")
	errNoPendingBlock            = errors.New("consensus: handler requires a pending block but none exists")
	errMissingStakingAsset       = errors.New("consensus: staking asset not found in store")
)
