package validators

import "go.mongodb.org/mongo-driver/bson"

var ProviderValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
			"policy",
			"windows",
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

			"policy": bson.M{
				"bsonType": "object",
				"required": []string{
					"session_duration_min",
					"horizon_business_days",
					"utc_offset",
				},
				"properties": bson.M{
					"min_lead_time_min": bson.M{
						"bsonType": "int",
						"minimum":  0,
					},
					"session_duration_min": bson.M{
						"bsonType": "int",
						"minimum":  5,
						"maximum":  480,
					},
					"buffer_before_min": bson.M{
						"bsonType": "int",
						"minimum":  0,
						"maximum":  120,
					},
					"buffer_after_min": bson.M{
						"bsonType": "int",
						"minimum":  0,
						"maximum":  120,
					},
					"horizon_business_days": bson.M{
						"bsonType": "int",
						"minimum":  1,
						"maximum":  90,
					},
					"utc_offset": bson.M{
						"bsonType": "string",
						"pattern":  `^[+-][0-9]{2}:[0-9]{2}$`,
					},
				},
			},

			"windows": bson.M{
				"bsonType": "array",
				"minItems": 1,
				"items": bson.M{
					"bsonType": "object",
					"required": []string{
						"day_of_week",
						"start",
						"end",
						"session_kinds",
					},
					"properties": bson.M{
						"day_of_week": bson.M{
							"bsonType": "int",
							"minimum":  0,
							"maximum":  6,
						},
						"start": bson.M{
							"bsonType": "string",
							"pattern":  `^[0-2][0-9]:[0-5][0-9]$`,
						},
						"end": bson.M{
							"bsonType": "string",
							"pattern":  `^[0-2][0-9]:[0-5][0-9]$`,
						},
						"session_kinds": bson.M{
							"bsonType": "array",
							"minItems": 1,
							"items": bson.M{
								"bsonType": "string",
								"enum": []string{
									"online",
									"in_person",
								},
							},
						},
					},
				},
			},
		},
	},
}
