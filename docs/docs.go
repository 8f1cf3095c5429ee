// Package docs holds the generated OpenAPI definition served at /swagger.
// Regenerate with: swag init -g cmd/api/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Service health",
                "responses": {
                    "200": {"description": "OK"},
                    "503": {"description": "Service Unavailable"}
                }
            }
        },
        "/api/sync/full": {
            "post": {
                "produces": ["application/json"],
                "tags": ["sync"],
                "summary": "Trigger a full synchronization",
                "responses": {
                    "202": {"description": "Accepted"},
                    "409": {"description": "Conflict"}
                }
            }
        },
        "/api/sync/incremental": {
            "post": {
                "produces": ["application/json"],
                "tags": ["sync"],
                "summary": "Trigger an incremental synchronization",
                "responses": {
                    "202": {"description": "Accepted"},
                    "409": {"description": "Conflict"}
                }
            }
        },
        "/api/sync/jobs": {
            "get": {
                "produces": ["application/json"],
                "tags": ["sync"],
                "summary": "List recent sync jobs",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/catalog/products": {
            "get": {
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "List synchronized products",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/inventory/stock": {
            "get": {
                "produces": ["application/json"],
                "tags": ["inventory"],
                "summary": "List stock levels",
                "responses": {"200": {"description": "OK"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "CRM Backend API",
	Description:      "CRM backend with MoySklad ERP synchronization.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
