package http

// contactRecordsSchema validates the shape of the contacts array accepted by
// the batch endpoint before any record reaches the service layer. Content
// rules (non-empty name/phone1, group existence, uniqueness) stay per-record
// inside the batch transaction.
const contactRecordsSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "properties": {
      "name":         {"type": "string"},
      "phone1":       {"type": "string"},
      "phone2":       {"type": "string"},
      "email1":       {"type": "string"},
      "email2":       {"type": "string"},
      "social_media": {"type": "string"},
      "address":      {"type": "string"},
      "group_id":     {"type": "integer", "minimum": 0},
      "is_favorite":  {"type": "boolean"}
    }
  }
}`
