package mqtt

// Config defines the connection parameters for the counts feed.
type Config struct {
	Enabled  bool   `json:"enabled"`
	Broker   string `json:"broker"`
	ClientID string `json:"client_id"`
	Username string `json:"username"`
	Password string `json:"password"`
	// CountsTopic is the wildcard topic the counting collaborator publishes
	// on; the stop identifier is the second-to-last topic segment.
	CountsTopic string `json:"counts_topic"`
	// ResultTopic receives a JSON summary of every allocation run.
	ResultTopic string `json:"result_topic"`
	QoS         byte   `json:"qos"`
}

// SetDefaults applies the default topic layout.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "busalloc"
	}
	if c.CountsTopic == "" {
		c.CountsTopic = "busalloc/stops/+/count"
	}
	if c.ResultTopic == "" {
		c.ResultTopic = "busalloc/allocations"
	}
}
