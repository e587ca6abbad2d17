// Package swagger registers the OpenAPI description served under /swagger.
// Regenerate it from the handler annotations with: go generate ./cmd/billing
package swagger

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
		"/api/invoices": {
			"post": {
				"description": "Numbers the invoice, stores its items, decrements stock and books the unpaid part on the customer in one transaction",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"invoices"
				],
				"summary": "Create invoice",
				"parameters": [
					{
						"description": "Create Invoice Payload",
						"name": "payload",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/service.CreateInvoiceRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "OK",
						"schema": {
							"allOf": [
								{
									"$ref": "#/definitions/response.Response"
								},
								{
									"type": "object",
									"properties": {
										"data": {
											"$ref": "#/definitions/service.InvoiceResponse"
										}
									}
								}
							]
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				}
			},
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"invoices"
				],
				"summary": "List invoices",
				"parameters": [
					{
						"type": "string",
						"description": "Matches invoice number or customer name",
						"name": "search",
						"in": "query"
					},
					{
						"type": "string",
						"description": "Payment status (paid, unpaid, partial)",
						"name": "status",
						"in": "query"
					},
					{
						"type": "string",
						"description": "Start date YYYY-MM-DD (inclusive)",
						"name": "from",
						"in": "query"
					},
					{
						"type": "string",
						"description": "End date YYYY-MM-DD (inclusive)",
						"name": "to",
						"in": "query"
					},
					{
						"type": "string",
						"description": "Customer ID",
						"name": "customer_id",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "Page number",
						"name": "page",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "Items per page",
						"name": "limit",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"allOf": [
								{
									"$ref": "#/definitions/response.Response"
								},
								{
									"type": "object",
									"properties": {
										"data": {
											"type": "array",
											"items": {
												"$ref": "#/definitions/service.InvoiceResponse"
											}
										}
									}
								}
							]
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				}
			}
		},
		"/api/invoices/{id}": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"invoices"
				],
				"summary": "Get invoice",
				"parameters": [
					{
						"type": "string",
						"description": "Invoice ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"allOf": [
								{
									"$ref": "#/definitions/response.Response"
								},
								{
									"type": "object",
									"properties": {
										"data": {
											"$ref": "#/definitions/service.InvoiceResponse"
										}
									}
								}
							]
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				}
			},
			"delete": {
				"description": "Restores stock, reverses the customer balance and removes the invoice. Unknown or malformed ids succeed without changes.",
				"produces": [
					"application/json"
				],
				"tags": [
					"invoices"
				],
				"summary": "Delete invoice",
				"parameters": [
					{
						"type": "string",
						"description": "Invoice ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				}
			}
		},
		"/api/customers": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"customers"
				],
				"summary": "List customers",
				"parameters": [
					{
						"type": "string",
						"description": "Search by name, phone, email",
						"name": "search",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "Page number",
						"name": "page",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "Items per page",
						"name": "limit",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"allOf": [
								{
									"$ref": "#/definitions/response.Response"
								},
								{
									"type": "object",
									"properties": {
										"data": {
											"type": "array",
											"items": {
												"$ref": "#/definitions/service.CustomerResponse"
											}
										}
									}
								}
							]
						}
					}
				}
			},
			"post": {
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"customers"
				],
				"summary": "Create customer",
				"parameters": [
					{
						"description": "Customer payload",
						"name": "payload",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/service.CustomerRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "OK",
						"schema": {
							"allOf": [
								{
									"$ref": "#/definitions/response.Response"
								},
								{
									"type": "object",
									"properties": {
										"data": {
											"$ref": "#/definitions/service.CustomerResponse"
										}
									}
								}
							]
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				}
			}
		},
		"/api/customers/{id}": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"customers"
				],
				"summary": "Get customer",
				"parameters": [
					{
						"type": "string",
						"description": "Customer ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"type": "string",
						"description": "Set to 1 to include invoices",
						"name": "history",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"allOf": [
								{
									"$ref": "#/definitions/response.Response"
								},
								{
									"type": "object",
									"properties": {
										"data": {
											"$ref": "#/definitions/service.CustomerResponse"
										}
									}
								}
							]
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				}
			},
			"put": {
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"customers"
				],
				"summary": "Update customer",
				"parameters": [
					{
						"type": "string",
						"description": "Customer ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "Customer payload",
						"name": "payload",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/service.CustomerRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"allOf": [
								{
									"$ref": "#/definitions/response.Response"
								},
								{
									"type": "object",
									"properties": {
										"data": {
											"$ref": "#/definitions/service.CustomerResponse"
										}
									}
								}
							]
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				}
			},
			"delete": {
				"produces": [
					"application/json"
				],
				"tags": [
					"customers"
				],
				"summary": "Delete customer",
				"parameters": [
					{
						"type": "string",
						"description": "Customer ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				}
			}
		},
		"/api/customers/{id}/pay": {
			"post": {
				"description": "Subtracts the amount from the customer's balance. Invoices are not touched.",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"customers"
				],
				"summary": "Settle payment",
				"parameters": [
					{
						"type": "string",
						"description": "Customer ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "Payment payload",
						"name": "payload",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/service.PaymentRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"allOf": [
								{
									"$ref": "#/definitions/response.Response"
								},
								{
									"type": "object",
									"properties": {
										"data": {
											"$ref": "#/definitions/service.CustomerResponse"
										}
									}
								}
							]
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				}
			}
		},
		"/api/products": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"products"
				],
				"summary": "List products",
				"parameters": [
					{
						"type": "string",
						"description": "Search by name or SKU",
						"name": "search",
						"in": "query"
					},
					{
						"type": "string",
						"description": "Exact category",
						"name": "category",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "Page number",
						"name": "page",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "Items per page",
						"name": "limit",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"allOf": [
								{
									"$ref": "#/definitions/response.Response"
								},
								{
									"type": "object",
									"properties": {
										"data": {
											"type": "array",
											"items": {
												"$ref": "#/definitions/service.ProductResponse"
											}
										}
									}
								}
							]
						}
					}
				}
			},
			"post": {
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"products"
				],
				"summary": "Create product",
				"parameters": [
					{
						"description": "Product payload",
						"name": "payload",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/service.ProductRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "OK",
						"schema": {
							"allOf": [
								{
									"$ref": "#/definitions/response.Response"
								},
								{
									"type": "object",
									"properties": {
										"data": {
											"$ref": "#/definitions/service.ProductResponse"
										}
									}
								}
							]
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				}
			}
		},
		"/api/products/low-stock": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"products"
				],
				"summary": "Low stock products",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"allOf": [
								{
									"$ref": "#/definitions/response.Response"
								},
								{
									"type": "object",
									"properties": {
										"data": {
											"type": "array",
											"items": {
												"$ref": "#/definitions/service.ProductResponse"
											}
										}
									}
								}
							]
						}
					}
				}
			}
		},
		"/api/products/{id}": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"products"
				],
				"summary": "Get product",
				"parameters": [
					{
						"type": "string",
						"description": "Product ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"allOf": [
								{
									"$ref": "#/definitions/response.Response"
								},
								{
									"type": "object",
									"properties": {
										"data": {
											"$ref": "#/definitions/service.ProductResponse"
										}
									}
								}
							]
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				}
			},
			"put": {
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"products"
				],
				"summary": "Update product",
				"parameters": [
					{
						"type": "string",
						"description": "Product ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "Product payload",
						"name": "payload",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/service.ProductRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"allOf": [
								{
									"$ref": "#/definitions/response.Response"
								},
								{
									"type": "object",
									"properties": {
										"data": {
											"$ref": "#/definitions/service.ProductResponse"
										}
									}
								}
							]
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				}
			},
			"delete": {
				"produces": [
					"application/json"
				],
				"tags": [
					"products"
				],
				"summary": "Delete product",
				"parameters": [
					{
						"type": "string",
						"description": "Product ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				}
			}
		},
		"/api/categories": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"categories"
				],
				"summary": "List categories",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"allOf": [
								{
									"$ref": "#/definitions/response.Response"
								},
								{
									"type": "object",
									"properties": {
										"data": {
											"type": "array",
											"items": {
												"$ref": "#/definitions/service.CategoryResponse"
											}
										}
									}
								}
							]
						}
					}
				}
			},
			"post": {
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"categories"
				],
				"summary": "Create category",
				"parameters": [
					{
						"description": "Category payload",
						"name": "payload",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/service.CategoryRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "OK",
						"schema": {
							"allOf": [
								{
									"$ref": "#/definitions/response.Response"
								},
								{
									"type": "object",
									"properties": {
										"data": {
											"$ref": "#/definitions/service.CategoryResponse"
										}
									}
								}
							]
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				}
			}
		},
		"/api/settings": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"settings"
				],
				"summary": "Get settings",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"allOf": [
								{
									"$ref": "#/definitions/response.Response"
								},
								{
									"type": "object",
									"properties": {
										"data": {
											"type": "object",
											"additionalProperties": {
												"type": "string"
											}
										}
									}
								}
							]
						}
					}
				}
			},
			"put": {
				"description": "invoice_counter must be a positive integer and invoice_prefix must not be blank",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"settings"
				],
				"summary": "Update settings",
				"parameters": [
					{
						"description": "Settings to upsert",
						"name": "payload",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object",
							"additionalProperties": {
								"type": "string"
							}
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"allOf": [
								{
									"$ref": "#/definitions/response.Response"
								},
								{
									"type": "object",
									"properties": {
										"data": {
											"type": "object",
											"additionalProperties": {
												"type": "string"
											}
										}
									}
								}
							]
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				}
			}
		},
		"/api/reports": {
			"get": {
				"description": "type is one of summary, daily, products, customers, invoicelist, outstanding",
				"produces": [
					"application/json"
				],
				"tags": [
					"reports"
				],
				"summary": "Sales report",
				"parameters": [
					{
						"type": "string",
						"description": "Report type (default summary)",
						"name": "type",
						"in": "query"
					},
					{
						"type": "string",
						"description": "Start date YYYY-MM-DD",
						"name": "from",
						"in": "query"
					},
					{
						"type": "string",
						"description": "End date YYYY-MM-DD",
						"name": "to",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				}
			}
		},
		"/api/dashboard": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"reports"
				],
				"summary": "Dashboard",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"allOf": [
								{
									"$ref": "#/definitions/response.Response"
								},
								{
									"type": "object",
									"properties": {
										"data": {
											"$ref": "#/definitions/service.DashboardResponse"
										}
									}
								}
							]
						}
					}
				}
			}
		}
	},
	"definitions": {
		"response.Meta": {
			"type": "object",
			"properties": {
				"page": {
					"type": "integer"
				},
				"limit": {
					"type": "integer"
				},
				"total": {
					"type": "integer"
				},
				"total_pages": {
					"type": "integer"
				}
			}
		},
		"response.Response": {
			"type": "object",
			"properties": {
				"data": {},
				"error": {
					"type": "string"
				},
				"meta": {
					"$ref": "#/definitions/response.Meta"
				},
				"status": {
					"type": "string"
				},
				"status_code": {
					"type": "integer"
				}
			}
		},
		"service.CategoryRequest": {
			"type": "object",
			"properties": {
				"name": {
					"type": "string"
				}
			}
		},
		"service.CategoryResponse": {
			"type": "object",
			"properties": {
				"created_at": {
					"type": "string"
				},
				"id": {
					"type": "string"
				},
				"name": {
					"type": "string"
				}
			}
		},
		"service.CreateInvoiceRequest": {
			"type": "object",
			"properties": {
				"amount_paid": {
					"type": "number"
				},
				"customer_id": {
					"type": "string"
				},
				"customer_name": {
					"type": "string"
				},
				"customer_phone": {
					"type": "string"
				},
				"discount_amount": {
					"type": "number"
				},
				"gst_amount": {
					"type": "number"
				},
				"gst_enabled": {
					"type": "boolean"
				},
				"gst_rate": {
					"type": "number"
				},
				"items": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/service.InvoiceItemRequest"
					}
				},
				"notes": {
					"type": "string"
				},
				"payment_method": {
					"type": "string"
				},
				"payment_status": {
					"type": "string"
				},
				"subtotal": {
					"type": "number"
				},
				"total_amount": {
					"type": "number"
				}
			}
		},
		"service.CustomerRequest": {
			"type": "object",
			"properties": {
				"address": {
					"type": "string"
				},
				"email": {
					"type": "string"
				},
				"gstin": {
					"type": "string"
				},
				"name": {
					"type": "string"
				},
				"phone": {
					"type": "string"
				}
			}
		},
		"service.CustomerResponse": {
			"type": "object",
			"properties": {
				"address": {
					"type": "string"
				},
				"balance": {
					"type": "string"
				},
				"created_at": {
					"type": "string"
				},
				"email": {
					"type": "string"
				},
				"gstin": {
					"type": "string"
				},
				"id": {
					"type": "string"
				},
				"name": {
					"type": "string"
				},
				"phone": {
					"type": "string"
				},
				"updated_at": {
					"type": "string"
				}
			}
		},
		"service.DashboardResponse": {
			"type": "object",
			"properties": {
				"low_stock_items": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/service.ProductResponse"
					}
				},
				"recent_invoices": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/service.InvoiceResponse"
					}
				},
				"sales_trend": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/service.TrendPoint"
					}
				},
				"stats": {
					"$ref": "#/definitions/service.DashboardStats"
				},
				"top_products": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/service.ProductSalesRow"
					}
				}
			}
		},
		"service.DashboardStats": {
			"type": "object",
			"properties": {
				"low_stock_products": {
					"type": "integer"
				},
				"month_sales": {
					"type": "string"
				},
				"today_sales": {
					"type": "string"
				},
				"today_invoices": {
					"type": "integer"
				},
				"total_customers": {
					"type": "integer"
				},
				"total_products": {
					"type": "integer"
				},
				"week_sales": {
					"type": "string"
				}
			}
		},
		"service.InvoiceItemRequest": {
			"type": "object",
			"properties": {
				"discount": {
					"type": "number"
				},
				"price": {
					"type": "number"
				},
				"product_id": {
					"type": "string"
				},
				"product_name": {
					"type": "string"
				},
				"quantity": {
					"type": "number"
				},
				"total": {
					"type": "number"
				},
				"unit": {
					"type": "string"
				}
			}
		},
		"service.InvoiceItemResponse": {
			"type": "object",
			"properties": {
				"discount": {
					"type": "string"
				},
				"id": {
					"type": "string"
				},
				"price": {
					"type": "string"
				},
				"product_id": {
					"type": "string"
				},
				"product_name": {
					"type": "string"
				},
				"quantity": {
					"type": "string"
				},
				"total": {
					"type": "string"
				},
				"unit": {
					"type": "string"
				}
			}
		},
		"service.InvoiceResponse": {
			"type": "object",
			"properties": {
				"amount_paid": {
					"type": "string"
				},
				"balance_due": {
					"type": "string"
				},
				"created_at": {
					"type": "string"
				},
				"customer_id": {
					"type": "string"
				},
				"customer_name": {
					"type": "string"
				},
				"customer_phone": {
					"type": "string"
				},
				"discount_amount": {
					"type": "string"
				},
				"gst_amount": {
					"type": "string"
				},
				"gst_enabled": {
					"type": "boolean"
				},
				"gst_rate": {
					"type": "string"
				},
				"id": {
					"type": "string"
				},
				"invoice_number": {
					"type": "string"
				},
				"items": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/service.InvoiceItemResponse"
					}
				},
				"notes": {
					"type": "string"
				},
				"payment_method": {
					"type": "string"
				},
				"payment_status": {
					"type": "string"
				},
				"subtotal": {
					"type": "string"
				},
				"total_amount": {
					"type": "string"
				}
			}
		},
		"service.PaymentRequest": {
			"type": "object",
			"properties": {
				"amount": {
					"type": "number"
				}
			}
		},
		"service.ProductRequest": {
			"type": "object",
			"properties": {
				"category": {
					"type": "string"
				},
				"description": {
					"type": "string"
				},
				"gst_rate": {
					"type": "number"
				},
				"hsn_code": {
					"type": "string"
				},
				"low_stock_alert": {
					"type": "number"
				},
				"name": {
					"type": "string"
				},
				"purchase_price": {
					"type": "number"
				},
				"quantity": {
					"type": "number"
				},
				"selling_price": {
					"type": "number"
				},
				"sku": {
					"type": "string"
				},
				"unit": {
					"type": "string"
				}
			}
		},
		"service.ProductResponse": {
			"type": "object",
			"properties": {
				"category": {
					"type": "string"
				},
				"created_at": {
					"type": "string"
				},
				"description": {
					"type": "string"
				},
				"gst_rate": {
					"type": "string"
				},
				"hsn_code": {
					"type": "string"
				},
				"id": {
					"type": "string"
				},
				"is_low_stock": {
					"type": "boolean"
				},
				"low_stock_alert": {
					"type": "string"
				},
				"name": {
					"type": "string"
				},
				"purchase_price": {
					"type": "string"
				},
				"quantity": {
					"type": "string"
				},
				"selling_price": {
					"type": "string"
				},
				"sku": {
					"type": "string"
				},
				"unit": {
					"type": "string"
				},
				"updated_at": {
					"type": "string"
				}
			}
		},
		"service.ProductSalesRow": {
			"type": "object",
			"properties": {
				"invoice_count": {
					"type": "integer"
				},
				"product_name": {
					"type": "string"
				},
				"total_quantity": {
					"type": "string"
				},
				"total_revenue": {
					"type": "string"
				}
			}
		},
		"service.TrendPoint": {
			"type": "object",
			"properties": {
				"amount": {
					"type": "string"
				},
				"date": {
					"type": "string"
				}
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
	Title:            "Billing Ledger API",
	Description:      "Invoices, stock and customer balances for a single retail store.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
