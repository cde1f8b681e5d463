package outbox

const activityRecordedSchema = `{
  "type": "object",
  "title": "ActivityRecorded",
  "properties": {
    "club_id": {"type": "string"},
    "athlete_id": {"type": "integer"},
    "activity_id": {"type": "integer"},
    "activity_type": {"type": "string"},
    "week": {"type": "string"},
    "date_time": {"type": "string", "format": "date-time"},
    "recorded_at": {"type": "string", "format": "date-time"}
  },
  "required": ["club_id", "athlete_id", "activity_id", "recorded_at"],
  "additionalProperties": false
}`

const scoreComputedSchema = `{
  "type": "object",
  "title": "ScoreComputed",
  "properties": {
    "club_id": {"type": "string"},
    "run_id": {"type": "string"},
    "records": {"type": "integer"},
    "entries": {"type": "integer"},
    "total_points": {"type": "number"},
    "computed_at": {"type": "string", "format": "date-time"}
  },
  "required": ["club_id", "run_id", "records", "entries", "total_points", "computed_at"],
  "additionalProperties": false
}`
