package model

// WebSocket message types
const (
	WSMessageTypeJob      = "job"
	WSMessageTypeMachine  = "machine"
	WSMessageTypeMaterial = "material"
	WSMessageTypeAlert    = "alert"
	WSMessageTypePing     = "ping"
	WSMessageTypePong     = "pong"
)

// WebSocket topics
const (
	TopicJobs      = "jobs"
	TopicMachines  = "machines"
	TopicMaterials = "materials"
	TopicAlerts    = "alerts"
)

// JobTopic is the per-job subscription topic.
func JobTopic(jobID string) string {
	return "job:" + jobID
}

// WSMessage represents a generic WebSocket message
type WSMessage struct {
	Type string `json:"type"`
}

// WSJobMessage carries a job snapshot and the log entry that produced it
type WSJobMessage struct {
	Type string  `json:"type"`
	Job  Job     `json:"job"`
	Log  *JobLog `json:"log,omitempty"`
}

// WSMachineMessage carries a machine snapshot
type WSMachineMessage struct {
	Type    string  `json:"type"`
	Machine Machine `json:"machine"`
}

// WSMaterialMessage carries a material snapshot and its latest transaction
type WSMaterialMessage struct {
	Type        string               `json:"type"`
	Material    Material             `json:"material"`
	Transaction *MaterialTransaction `json:"transaction,omitempty"`
}

// WSAlertMessage is pushed to the alerts topic
type WSAlertMessage struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Subject string `json:"subject"`
}
