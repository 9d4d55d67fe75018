package server

import (
	"net/http"

	"github.com/dOtOb9/message/internal/chat"
	"github.com/dOtOb9/message/internal/todo"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// registerRoutes sets up all API routes on the Gin router.
func registerRoutes(router *gin.Engine, db *gorm.DB, todos *todo.Store) {
	router.GET("/healthz", handleHealth)

	api := router.Group("/api")
	api.POST("/messages", handleSendMessage(db))
	api.GET("/chats/:chatId/messages", handleChatMessages(db))
	api.GET("/users/:id/todos", handleListTodos(todos))
	api.POST("/users/:id/todos", handleAddTodo(todos))
	api.POST("/users/:id/todos/:todoId/toggle", handleToggleTodo(todos))
	api.DELETE("/users/:id/todos/:todoId", handleDeleteTodo(todos))
}

func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type sendMessageRequest struct {
	SenderID   string `json:"senderId" binding:"required"`
	ReceiverID string `json:"receiverId" binding:"required"`
	Text       string `json:"text" binding:"required"`
}

func handleSendMessage(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req sendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		msg, err := chat.Send(db, req.SenderID, req.ReceiverID, req.Text)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"id":        msg.ID,
			"chatId":    msg.ChatID,
			"senderId":  msg.SenderID,
			"text":      msg.Text,
			"createdAt": msg.CreatedAt,
		})
	}
}

func handleChatMessages(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		msgs, err := chat.History(db, c.Param("chatId"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"messages": msgs})
	}
}

func handleListTodos(todos *todo.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := todos.ListForUser(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"todos": items})
	}
}

type addTodoRequest struct {
	Content string `json:"content" binding:"required"`
}

func handleAddTodo(todos *todo.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addTodoRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		t, err := todos.Add(c.Param("id"), req.Content)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": t.ID, "content": t.Content, "status": t.Status})
	}
}

type lineageRequest struct {
	FromChat bool `json:"fromChat"`
}

func handleToggleTodo(todos *todo.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req lineageRequest
		if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := todos.Toggle(c.Param("id"), c.Param("todoId"), req.FromChat); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func handleDeleteTodo(todos *todo.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		fromChat := c.Query("fromChat") == "true"
		if err := todos.Delete(c.Param("id"), c.Param("todoId"), fromChat); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
