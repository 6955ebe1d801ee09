package model

// DeviceInfo is a point-in-time description of the device running the agent.
type DeviceInfo struct {
	Model          string `yaml:"model"          json:"model"`
	Manufacturer   string `yaml:"manufacturer"   json:"manufacturer"`
	AndroidVersion string `yaml:"androidVersion" json:"androidVersion"`
	SDKInt         int    `yaml:"sdkInt"         json:"sdkInt"`
	BatteryPercent int    `yaml:"batteryPercent" json:"batteryPercent"`
	IPAddress      string `yaml:"ipAddress"      json:"ipAddress"`
	Port           int    `yaml:"port"           json:"port"`
}

// CaptureStatus describes the capture grant as seen by callers.
type CaptureStatus struct {
	State        string `yaml:"state"                json:"state"`
	LostReason   string `yaml:"lostReason,omitempty" json:"lostReason,omitempty"`
	Persisted    bool   `yaml:"persisted"            json:"persisted"`
	ReuseAllowed bool   `yaml:"reuseAllowed"         json:"reuseAllowed"`
}
