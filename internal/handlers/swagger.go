package handlers

// @title Storefront Functions API
// @version 1.0
// @description Cart, order, product and user endpoints of the storefront
// @description Cart and order routes act for the user named by the uid header.

// @host localhost:8081
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey UserID
// @in header
// @name uid

// @tag.name products
// @tag.description Product catalogue

// @tag.name user
// @tag.description User records

// @tag.name carts
// @tag.description Shopping cart of the acting user

// @tag.name orders
// @tag.description Orders of the acting user
