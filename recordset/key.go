package recordset

import (
	"github.com/aalemi-dev/kafka-gateway/avro"
)

// BuildKey creates the key record shared by every value of a record set. Only
// the identity fields that keySchema declares are set; other fields take
// their schema default. A nil project or user is mapped as null, which only
// an optional key field accepts.
func BuildKey(keySchema *avro.Schema, projectID, userID *string, sourceID string) (map[string]interface{}, error) {
	identity := map[string]interface{}{
		"projectId": optional(projectID),
		"userId":    optional(userID),
		"sourceId":  sourceID,
	}
	return avro.MapRecord(identity, keySchema, avro.NewContext(avro.Record, "key"))
}

func optional(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
