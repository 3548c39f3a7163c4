package invoice

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	invoices := router.Group("/invoices")
	invoices.GET("", List)
	invoices.POST("", Create)
	invoices.GET("/pending", ListPending)
	invoices.GET("/paid", ListPaid)
	invoices.GET("/statistics", Statistics)
	invoices.GET("/summary", Summary)
	invoices.POST("/test", CreateTest)
	invoices.GET("/:id", Detail)
	invoices.POST("/:id/pay", Pay)
}
