package socket

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development
		// In production, restrict to your domains
		return true
	},
}

// Handler handles WebSocket upgrade requests
type Handler struct {
	Hub       *Hub
	JWTSecret string
}

// NewHandler creates a new WebSocket handler. jwtSecret validates the
// session token from the query string, because the browser WebSocket API
// cannot set custom headers.
func NewHandler(hub *Hub, jwtSecret string) *Handler {
	return &Handler{Hub: hub, JWTSecret: jwtSecret}
}

// HandleWebSocket upgrades an authenticated request to a WebSocket
func (h *Handler) HandleWebSocket(c *gin.Context) {
	tokenString := c.Query("token")
	if tokenString == "" {
		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}
	}
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No token provided"})
		return
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(h.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		log.Printf("[Socket] Token rejected: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
		return
	}

	clientID, ok := claims["cli"].(string)
	if !ok || clientID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No client id in token"})
		return
	}

	wsConn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[Socket] Upgrade error: %v", err)
		return
	}

	log.Printf("[Socket] ✅ Browser connected: clientID=%s", clientID)

	conn := &Conn{
		ID:       uuid.New().String(),
		ClientID: clientID,
		Conn:     wsConn,
		Hub:      h.Hub,
		Send:     make(chan []byte, 256),
		lastPing: time.Now(),
	}
	h.Hub.register <- conn

	go conn.WritePump()
	go conn.ReadPump()
}
