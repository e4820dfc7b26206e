package consensus

import "github.com/Fantom-foundation/lachesis-base/inter/idx"

// idxEpochForHeight computes which epoch a height falls in, given the
// chain's epoch_duration parameter.
func idxEpochForHeight(height idx.Block, epochDuration idx.Block) idx.Epoch {
	if epochDuration == 0 {
		return 0
	}
	return idx.Epoch(uint64(height) / uint64(epochDuration))
}

// epochEnd returns the last height belonging to the given epoch.
func epochEnd(epoch idx.Epoch, epochDuration idx.Block) idx.Block {
	return idx.Block((uint64(epoch)+1)*uint64(epochDuration) - 1)
}
