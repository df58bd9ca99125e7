// Package access registers the OpenAPI description of the access service
// with swag so /swagger/ can serve it. Regenerate with:
//
//	swag init -g internal/access/http/router.go -o api/access --parseDependency
package access

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "AussieBroadWAN Team",
            "url": "https://github.com/aussiebroadwan/careshare"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/livez": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Health Check Endpoint",
                "responses": {"200": {"description": "status, uptime, version"}}
            }
        },
        "/readyz": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Readiness Check Endpoint",
                "responses": {
                    "200": {"description": "status, uptime, version, checks"},
                    "503": {"description": "service not ready"}
                }
            }
        },
        "/.well-known/jwks.json": {
            "get": {
                "produces": ["application/json"],
                "tags": ["well-known"],
                "summary": "Get JWKS",
                "responses": {"200": {"description": "The JSON Web Key Set"}}
            }
        },
        "/v1/otp/challenges": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["OTP"],
                "summary": "Issue OTP Challenge",
                "responses": {
                    "201": {"description": "challenge_id, expires_at, delivered"},
                    "202": {"description": "challenge issued but not delivered"},
                    "400": {"description": "error, error_description"},
                    "429": {"description": "resend throttled"},
                    "502": {"description": "store unavailable"}
                }
            }
        },
        "/v1/otp/verify": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["OTP"],
                "summary": "Verify OTP",
                "responses": {
                    "200": {"description": "valid"},
                    "401": {"description": "invalid_or_expired"},
                    "429": {"description": "locked, retry_after_minutes"},
                    "502": {"description": "store unavailable"}
                }
            }
        },
        "/v1/access-codes": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Access Codes"],
                "summary": "List Access Codes",
                "responses": {"200": {"description": "codes"}, "401": {"description": "invalid_token"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Access Codes"],
                "summary": "Issue Access Code",
                "responses": {"201": {"description": "the new code"}, "400": {"description": "error, error_description"}}
            }
        },
        "/v1/access-codes/extend": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Access Codes"],
                "summary": "Extend Access Code",
                "responses": {"200": {"description": "extended, expires_at"}}
            }
        },
        "/v1/access-codes/regenerate": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Access Codes"],
                "summary": "Regenerate Access Code",
                "responses": {"201": {"description": "the replacement code"}, "404": {"description": "unknown or already revoked code"}}
            }
        },
        "/v1/access-codes/revoke": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Access Codes"],
                "summary": "Revoke Access Code",
                "responses": {"200": {"description": "revoked"}}
            }
        },
        "/v1/access-codes/redeem": {
            "post": {
                "tags": ["Access Codes"],
                "summary": "Redeem Access Code",
                "responses": {
                    "200": {"description": "grant_token, expires_in, scope"},
                    "401": {"description": "invalid_or_expired"},
                    "429": {"description": "locked, retry_after_minutes"}
                }
            }
        },
        "/v1/shared/documents": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Shared Documents"],
                "summary": "List Shared Documents",
                "responses": {"200": {"description": "owner_id, documents"}, "401": {"description": "invalid_token"}}
            }
        },
        "/v1/shared/documents/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Shared Documents"],
                "summary": "Get Shared Document",
                "parameters": [{"type": "string", "description": "Document ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "document metadata"}, "403": {"description": "access_denied"}}
            }
        },
        "/v1/security-events": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Audit"],
                "summary": "Security Event Feed",
                "responses": {"200": {"description": "events, next_before"}, "403": {"description": "insufficient_scope"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Owner access token, grant token or internal token. Format: \"Bearer {token}\".",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "CareShare Access Service API",
	Description:      "Credential-gated access to shared care documents: one-time codes, access codes and brute-force protection.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
