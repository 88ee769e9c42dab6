package validators

import "go.mongodb.org/mongo-driver/bson"

var CalendarCredentialValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"access_token",
			"connected",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},

			"access_token": bson.M{
				"bsonType": "string",
			},

			"calendar_id": bson.M{
				"bsonType": "string",
			},

			"connected": bson.M{
				"bsonType": "bool",
			},

			"expires_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
