package validators

import "go.mongodb.org/mongo-driver/bson"

// SlotClaimValidator pins the _id to "<business id>:<granule start ms>".
var SlotClaimValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"_id",
			"business_id",
			"appointment_id",
			"granule_start",
		},
		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
				"pattern":  `^[0-9a-f]{24}:-?[0-9]+$`,
			},
			"business_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},
			"appointment_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},
			"granule_start": bson.M{
				"bsonType": "date",
			},
		},
	},
}
