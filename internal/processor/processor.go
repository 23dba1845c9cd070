package processor

import (
	"time"
)

const (
	// KeyProcessedAt is the key added to each record with the stamping time
	KeyProcessedAt = "processed_at"

	// KeyStatus is the key added to each record with the completion marker
	KeyStatus = "status"

	// StatusComplete is the value written under KeyStatus for every stamped record
	StatusComplete = "complete"
)

// Record is one unit of data to be annotated. Records are open key-value
// structures; no schema is enforced.
type Record map[string]interface{}

// Config is an opaque bag of settings carried by a Processor. It is stored
// as given and never interpreted by the stamping path.
type Config map[string]interface{}

// Processor annotates records with a processing timestamp and a status
// marker and tracks how many records it has handled. A Processor is not
// safe for concurrent use.
type Processor struct {
	config Config
	count  int

	// now is the clock used for stamps; swapped out in tests
	now func() time.Time
}

// New creates a Processor with the given configuration. A nil config is
// treated as empty.
func New(config Config) *Processor {
	if config == nil {
		config = Config{}
	}
	return &Processor{
		config: config,
		now:    time.Now,
	}
}

// Process stamps every record in order and returns a new slice of the same
// length. Input records are never mutated; each output record is a shallow
// copy of its input with processed_at and status added, the stamp keys
// overwriting same-named input keys. The processed count grows by exactly
// len(records).
func (p *Processor) Process(records []Record) []Record {
	results := make([]Record, 0, len(records))
	for _, record := range records {
		results = append(results, p.transform(record))
		p.count++
	}
	return results
}

// transform copies one record and applies the stamp keys.
func (p *Processor) transform(record Record) Record {
	stamped := make(Record, len(record)+2)
	for k, v := range record {
		stamped[k] = v
	}
	stamped[KeyProcessedAt] = p.now().Format(time.RFC3339Nano)
	stamped[KeyStatus] = StatusComplete
	return stamped
}

// Count returns the total number of records processed so far. The count is
// never reset for the lifetime of the Processor.
func (p *Processor) Count() int {
	return p.count
}

// ConfigValue returns the configuration value stored under key, if any.
func (p *Processor) ConfigValue(key string) (interface{}, bool) {
	v, ok := p.config[key]
	return v, ok
}
