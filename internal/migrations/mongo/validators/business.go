package validators

import "go.mongodb.org/mongo-driver/bson"

var clockPattern = `^(([01][0-9]|2[0-3]):[0-5][0-9]|24:00)$`

var shiftSchema = bson.M{
	"bsonType": "object",
	"required": []string{"start", "end"},
	"properties": bson.M{
		"start": bson.M{"bsonType": "string", "pattern": clockPattern},
		"end":   bson.M{"bsonType": "string", "pattern": clockPattern},
	},
}

var momentSchema = bson.M{
	"bsonType": "object",
	"required": []string{"month", "day"},
	"properties": bson.M{
		"year":   bson.M{"bsonType": []string{"int", "long"}, "minimum": 1970, "maximum": 9999},
		"month":  bson.M{"bsonType": []string{"int", "long"}, "minimum": 1, "maximum": 12},
		"day":    bson.M{"bsonType": []string{"int", "long"}, "minimum": 1, "maximum": 31},
		"hour":   bson.M{"bsonType": []string{"int", "long"}, "minimum": 0, "maximum": 23},
		"minute": bson.M{"bsonType": []string{"int", "long"}, "minimum": 0, "maximum": 59},
	},
}

var appLinkSchema = bson.M{
	"bsonType": "object",
	"required": []string{"app_id"},
	"properties": bson.M{
		"app_id":      bson.M{"bsonType": "string", "minLength": 1, "maxLength": 64},
		"external_id": bson.M{"bsonType": "string", "maxLength": 256},
	},
}

var BusinessValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
			"admin_phone",
			"time_zone",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"admin_phone": bson.M{
				"bsonType": "string",
				"pattern":  `^\+[1-9]\d{1,14}$`,
			},

			"time_zone": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"available_periods": bson.M{
				"bsonType": []string{"array", "null"},
				"maxItems": 7,
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"week_day"},
					"properties": bson.M{
						"week_day": bson.M{"bsonType": []string{"int", "long"}, "minimum": 1, "maximum": 7},
						"shifts": bson.M{
							"bsonType": []string{"array", "null"},
							"maxItems": 24,
							"items":    shiftSchema,
						},
					},
				},
			},

			"unavailable_periods": bson.M{
				"bsonType": []string{"array", "null"},
				"maxItems": 500,
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"start_at", "end_at"},
					"properties": bson.M{
						"start_at": momentSchema,
						"end_at":   momentSchema,
					},
				},
			},

			"booking": bson.M{
				"bsonType": "object",
				"properties": bson.M{
					"schedule_app": appLinkSchema,
					"calendar_apps": bson.M{
						"bsonType": []string{"array", "null"},
						"maxItems": 10,
						"items":    appLinkSchema,
					},
					"slot_start": bson.M{
						"bsonType": "string",
						"enum":     []string{"", "5", "10", "15", "20", "30", "every-hour", "custom"},
					},
					"custom_slots": bson.M{
						"bsonType": []string{"array", "null"},
						"maxItems": 288,
						"items":    bson.M{"bsonType": "string", "pattern": clockPattern},
					},
					"min_available_time_before_slot": bson.M{"bsonType": []string{"int", "long"}, "minimum": 0, "maximum": 1440},
					"min_available_time_after_slot":  bson.M{"bsonType": []string{"int", "long"}, "minimum": 0, "maximum": 1440},
					"min_time_before_first_slot":     bson.M{"bsonType": []string{"int", "long"}, "minimum": 0, "maximum": 525600},
					"max_days_before_last_slot":      bson.M{"bsonType": []string{"int", "long"}, "minimum": 0, "maximum": 730},
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
