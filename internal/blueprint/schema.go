package blueprint

const hexColorPattern = `^#?[0-9A-Fa-f]{6}$`

// schemaDocument is the draft-07 contract every stored or applied blueprint
// satisfies. Unknown keys are rejected at every object level.
const schemaDocument = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "style": {
      "type": "object",
      "properties": {
        "emojiPrefix": { "type": "string" },
        "theme": { "type": "string" }
      },
      "additionalProperties": false
    },
    "branding": {
      "type": "object",
      "properties": {
        "color": { "type": "string", "pattern": "` + hexColorPattern + `" },
        "accent": { "type": "string", "pattern": "` + hexColorPattern + `" },
        "emoji": { "type": "string" }
      },
      "additionalProperties": false
    },
    "community": { "type": "boolean" },
    "roles": {
      "type": "array",
      "minItems": 1,
      "items": { "$ref": "#/definitions/role" }
    },
    "categories": {
      "type": "object",
      "minProperties": 1,
      "additionalProperties": {
        "type": "array",
        "items": { "$ref": "#/definitions/channel" }
      }
    },
    "private": {
      "type": "object",
      "additionalProperties": { "type": "array", "items": { "type": "string" } }
    },
    "categoryPrivacy": {
      "type": "object",
      "additionalProperties": { "type": "string" }
    },
    "welcomeScreen": {
      "type": "object",
      "properties": {
        "description": { "type": "string" },
        "prompts": {
          "type": "array",
          "items": {
            "type": "object",
            "properties": {
              "title": { "type": "string" },
              "channel": { "type": "string" },
              "emoji": { "type": "string" },
              "description": { "type": "string" }
            },
            "required": ["title"],
            "additionalProperties": false
          }
        }
      },
      "additionalProperties": false
    },
    "webhooks": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "properties": {
          "name": { "type": "string" },
          "avatar": { "type": "string" }
        },
        "additionalProperties": false
      }
    }
  },
  "required": ["roles", "categories"],
  "additionalProperties": false,
  "definitions": {
    "role": {
      "type": "object",
      "properties": {
        "name": { "type": "string", "minLength": 1 },
        "color": { "type": "string", "pattern": "` + hexColorPattern + `" },
        "permissions": { "type": "array", "items": { "type": "string" } },
        "isStaff": { "type": "boolean" },
        "isModerator": { "type": "boolean" }
      },
      "required": ["name"],
      "additionalProperties": false
    },
    "message": {
      "type": "object",
      "properties": {
        "title": { "type": "string" },
        "body": { "type": "string" },
        "sections": {
          "type": "array",
          "items": {
            "type": "object",
            "properties": {
              "header": { "type": "string" },
              "content": { "type": "string" },
              "bullets": { "type": "array", "items": { "type": "string" } }
            },
            "additionalProperties": false
          }
        }
      },
      "additionalProperties": false
    },
    "channel": {
      "type": "object",
      "properties": {
        "name": { "type": "string", "minLength": 1 },
        "type": {
          "type": "string",
          "enum": ["text", "voice", "announcement", "media", "stage", "forum"]
        },
        "topic": { "type": "string" },
        "readOnly": { "type": "boolean" },
        "private": { "type": "boolean" },
        "allowedRoles": { "type": "array", "items": { "type": "string" } },
        "permissions": {
          "anyOf": [
            { "type": "string" },
            { "type": "array", "items": { "type": "string" } }
          ]
        },
        "permissionsPreset": { "type": "string" },
        "order": { "type": "integer", "minimum": 0 },
        "threadsLocked": { "type": "boolean" },
        "defaultAutoArchiveDuration": { "type": "integer", "enum": [60, 1440, 4320, 10080] },
        "message": { "$ref": "#/definitions/message" },
        "emoji": { "type": "string" }
      },
      "required": ["name"],
      "additionalProperties": false
    }
  }
}`
