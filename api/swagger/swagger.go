package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SMA Procurement API",
        "description": "School procurement marketplace: bid requests, supplier offers, offer selection",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Login, registration and supplier verification"},
        {"name": "Bid Requests", "description": "School bid requests and their items"},
        {"name": "Supplier Offers", "description": "Offer submission and selection"},
        {"name": "Payments", "description": "School payment summaries for accepted offers"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate a user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/register": {
            "post": {
                "tags": ["Auth"],
                "summary": "Register a school or supplier account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Email already registered", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/suppliers/{id}/verify": {
            "post": {
                "tags": ["Auth"],
                "summary": "Mark a supplier account as verified (admin only)",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Supplier not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/bid-requests": {
            "post": {
                "tags": ["Bid Requests"],
                "summary": "Create a bid request with items (school only)",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateBidRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/bid-requests/active": {
            "get": {
                "tags": ["Bid Requests"],
                "summary": "List bid requests whose deadline has not passed",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/bid-requests/my-bids": {
            "get": {
                "tags": ["Bid Requests"],
                "summary": "List the authenticated school's bid requests with nested offers",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/supplier-offers": {
            "post": {
                "tags": ["Supplier Offers"],
                "summary": "Submit an offer on a bid item (verified supplier only)",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitOfferRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Deadline passed or invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Offer already submitted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/supplier-offers/{bidItemId}": {
            "get": {
                "tags": ["Supplier Offers"],
                "summary": "List offers on a bid item, submission order ascending",
                "parameters": [
                    {"name": "bidItemId", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Bid item not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/supplier-offers/my-offers": {
            "get": {
                "tags": ["Supplier Offers"],
                "summary": "List the authenticated supplier's offers across bid requests",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/supplier-offers/select/{offerId}": {
            "post": {
                "tags": ["Supplier Offers"],
                "summary": "Accept an offer for a bid item (owning school only)",
                "parameters": [
                    {"name": "offerId", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Deadline not reached yet", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Not the owning school", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Another offer already accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/supplier-offers/school-payments": {
            "get": {
                "tags": ["Payments"],
                "summary": "List accepted offers the school has to pay",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/supplier-offers/school-payments/export": {
            "get": {
                "tags": ["Payments"],
                "summary": "Export school payments as CSV or PDF",
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File download"},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "RegisterRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "full_name": {"type": "string"},
                "role": {"type": "string", "enum": ["SCHOOL", "SUPPLIER"]},
                "phone": {"type": "string"}
            },
            "required": ["email", "password", "full_name", "role"]
        },
        "CreateBidRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "deadline": {"type": "string", "format": "date-time"},
                "items": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/CreateBidItemSpec"}
                }
            },
            "required": ["title", "deadline", "items"]
        },
        "CreateBidItemSpec": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "quantity": {"type": "string"},
                "unit": {"type": "string"},
                "specification": {"type": "string"}
            },
            "required": ["name", "quantity", "unit"]
        },
        "SubmitOfferRequest": {
            "type": "object",
            "properties": {
                "bid_item_id": {"type": "string"},
                "price_per_unit": {"type": "string"},
                "delivery_time": {"type": "string"},
                "notes": {"type": "string"}
            },
            "required": ["bid_item_id", "price_per_unit"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
