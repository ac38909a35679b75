package column

import (
	"encoding/json"

	"github.com/soltixdb/segmentmerge/internal/aggregation"
)

// statsSerde serializes COMPLEX columns whose values are
// *aggregation.AggregatedField, the combining-aggregator running state
// (count/sum/min/max/sumSquares) rather than a single scalar. Registered
// under the "stats" type name so ingestion pipelines that declare a
// stats-aggregator metric get a COMPLEX column rather than a DOUBLE one.
type statsSerde struct{}

func (statsSerde) TypeName() string { return "stats" }

func (statsSerde) Serialize(values []interface{}) ([]byte, error) {
	fields := make([]*aggregation.AggregatedField, len(values))
	for i, v := range values {
		if v == nil {
			continue
		}
		fields[i] = v.(*aggregation.AggregatedField)
	}
	return json.Marshal(fields)
}

func (statsSerde) Deserialize(data []byte, count int) ([]interface{}, error) {
	var fields []*aggregation.AggregatedField
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	out := make([]interface{}, len(fields))
	for i, f := range fields {
		out[i] = f
	}
	return out, nil
}

func init() {
	RegisterSerde(statsSerde{})
}
