package peerv1

// ReasonKey is the trailer carrying a machine-readable failure reason.
const ReasonKey = "kv-error-reason"

const (
	ReasonRingEmpty        = "ring_empty"
	ReasonQuorumNotMet     = "quorum_not_met"
	ReasonMalformedClock   = "malformed_clock"
	ReasonNotFound         = "not_found"
	ReasonNotReplica       = "not_replica"
	ReasonInvalidKey       = "invalid_key"
	ReasonChecksumMismatch = "checksum_mismatch"
	ReasonTooLarge         = "too_large"
	ReasonStorageIO        = "storage_io"
	ReasonConflict         = "conflict"
)
