// Package docs registers the OpenAPI document served at /docs.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {"name": "Scoracle"},
        "license": {"name": "MIT"},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/leagues": {
            "get": {
                "description": "Returns every league the scraper supports.",
                "produces": ["application/json"],
                "tags": ["leagues"],
                "summary": "List leagues",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/handler.LeagueInfo"}}}
                }
            }
        },
        "/leagues/{league}/seasons": {
            "get": {
                "description": "Returns the seasons with stored transfers for a league, ascending.",
                "produces": ["application/json"],
                "tags": ["leagues"],
                "summary": "List stored seasons",
                "parameters": [
                    {"type": "string", "example": "premier-league", "description": "League slug", "name": "league", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/transfers/{league}/{season}": {
            "get": {
                "description": "Returns the transfers of a league season ordered by club, movement and window. Optional filters narrow by window, club or movement.",
                "produces": ["application/json"],
                "tags": ["transfers"],
                "summary": "Get transfers",
                "parameters": [
                    {"type": "string", "example": "premier-league", "description": "League slug", "name": "league", "in": "path", "required": true},
                    {"type": "integer", "example": 2024, "description": "Season start year", "name": "season", "in": "path", "required": true},
                    {"enum": ["summer", "winter"], "type": "string", "description": "Transfer window", "name": "window", "in": "query"},
                    {"type": "string", "description": "Exact club name", "name": "club", "in": "query"},
                    {"enum": ["in", "out"], "type": "string", "description": "Direction", "name": "movement", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/provider.Transfer"}}},
                    "304": {"description": "Not modified"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/transfers/{league}/{season}/clubs": {
            "get": {
                "description": "Returns per-club fee totals (spend, income, net spend) and arrival, departure and loan counts, ordered by net spend.",
                "produces": ["application/json"],
                "tags": ["transfers"],
                "summary": "Get club summaries",
                "parameters": [
                    {"type": "string", "example": "premier-league", "description": "League slug", "name": "league", "in": "path", "required": true},
                    {"type": "integer", "example": 2024, "description": "Season start year", "name": "season", "in": "path", "required": true},
                    {"enum": ["summer", "winter"], "type": "string", "description": "Transfer window", "name": "window", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"type": "object", "additionalProperties": true}}},
                    "304": {"description": "Not modified"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handler.LeagueInfo": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "name": {"type": "string"},
                "slug": {"type": "string"}
            }
        },
        "provider.Transfer": {
            "type": "object",
            "properties": {
                "age": {"type": "integer"},
                "club": {"type": "string"},
                "dealing_club": {"type": "string"},
                "dealing_country": {"type": "string"},
                "fee": {"type": "number"},
                "is_loan": {"type": "integer"},
                "league": {"type": "string"},
                "market_value": {"type": "number"},
                "movement": {"type": "string"},
                "nationality": {"type": "string"},
                "player_id": {"type": "integer"},
                "player_name": {"type": "string"},
                "position": {"type": "string"},
                "position_short": {"type": "string"},
                "season": {"type": "integer"},
                "window": {"type": "string"}
            }
        },
        "respond.ErrorBody": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "detail": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "respond.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"$ref": "#/definitions/respond.ErrorBody"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8000",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "Scoracle Transfers API",
	Description:      "Read API over scraped transfer-window records: per-league, per-season transfers and per-club money flow. Responses are JSON built by Postgres.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
