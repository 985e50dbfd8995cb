package validators

import "go.mongodb.org/mongo-driver/bson"

var RoomValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"number",
			"price",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 36,
				"maxLength": 36,
			},

			"number": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
			},

			"price": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
				"maximum":  9999.99,
			},

			"description": bson.M{
				"bsonType":  "string",
				"maxLength": 2048,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
