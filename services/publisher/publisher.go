package publisher

// Publisher hands extraction results to downstream consumers. The key
// identifies the product (its ASIN); the message is the marshalled
// result payload.
type Publisher interface {
	// Publish publishes a message to a stream
	Publish(key string, message []byte) error

	// TrimStreams trims all streams to the configured maximum length
	TrimStreams() error

	// Close closes the publisher connection
	Close() error
}
