// Package peerv1 is the node-to-node RPC contract. Messages travel as JSON over gRPC.
package peerv1

type StoreReplicaRequest struct {
	Folder      string `json:"folder"`
	Key         string `json:"key"`
	Payload     []byte `json:"payload"`
	Checksum    uint32 `json:"checksum"`
	VectorClock string `json:"vector_clock"`
	Repair      bool   `json:"repair,omitempty"`
}

type StoreReplicaResponse struct {
	Applied     bool   `json:"applied"`
	VectorClock string `json:"vector_clock"`
}

type RetrieveReplicaRequest struct {
	Folder string `json:"folder"`
	Key    string `json:"key"`
}

type RetrieveReplicaResponse struct {
	Found       bool   `json:"found"`
	Payload     []byte `json:"payload,omitempty"`
	Checksum    uint32 `json:"checksum"`
	VectorClock string `json:"vector_clock"`
	Node        string `json:"node"`
}

type ForwardRequest struct {
	Key     string `json:"key"`
	Payload []byte `json:"payload"`
}

type ForwardResponse struct {
	CoordinatorAddress string `json:"coordinator_address"`
	CoordinatorNumber  int32  `json:"coordinator_number"`
	VectorClock        string `json:"vector_clock"`
	Acks               int32  `json:"acks"`
	Required           int32  `json:"required"`
}

type HealthRequest struct{}

type HealthResponse struct {
	Address   string `json:"address"`
	Number    int32  `json:"number"`
	RingReady bool   `json:"ring_ready"`
}
