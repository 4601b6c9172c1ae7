package handlers

import (
	"encoding/csv"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jcallaghan/roster-engine-go/pkg/auth"
	"github.com/jcallaghan/roster-engine-go/pkg/database"
	"github.com/jcallaghan/roster-engine-go/pkg/models"
	"github.com/jcallaghan/roster-engine-go/pkg/roster"
)

// Handler contains dependencies for the route handlers
type Handler struct {
	DB       *gorm.DB
	Engine   roster.Config
	Validate *validator.Validate
}

// NewHandler wires the route handlers with their dependencies
func NewHandler(db *gorm.DB, engine roster.Config) *Handler {
	return &Handler{
		DB:       db,
		Engine:   engine,
		Validate: validator.New(),
	}
}

// AuthMiddleware verifies the JWT token for admin routes
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		// Strip "Bearer " if present
		if len(token) > 7 && token[:7] == "Bearer " {
			token = token[7:]
		}

		claims, err := auth.VerifyToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		c.Set("username", claims.Username)
		c.Next()
	}
}

// APIKeyMiddleware verifies the API key for roster routes using HMAC
func (h *Handler) APIKeyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("Authorization")
		if key == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "API Key required"})
			c.Abort()
			return
		}

		if len(key) > 7 && key[:7] == "Bearer " {
			key = key[7:]
		}

		userID, err := auth.VerifyHMACKey(key)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid API Key signature"})
			c.Abort()
			return
		}

		// Fetch or create API key record to track usage
		var apiKey database.APIKey
		h.DB.Where(database.APIKey{Key: key}).FirstOrCreate(&apiKey, database.APIKey{
			Key:       key,
			Name:      userID,
			RateLimit: 10000,
		})

		now := time.Now()
		apiKey.LastUsed = &now
		h.DB.Save(&apiKey)

		c.Set("apiKey", &apiKey)
		c.Set("userID", userID)
		c.Next()
	}
}

// RosterJSON handles the JSON-based roster generation request
func (h *Handler) RosterJSON(c *gin.Context) {
	result, input, ok := h.runEngine(c)
	if !ok {
		return
	}

	exportID := h.saveExport(c, input, result)

	c.JSON(http.StatusOK, gin.H{
		"export_id": exportID,
		"roster":    toResponse(input, result),
	})
}

// RosterCSV runs the engine and returns the roster as a CSV export
func (h *Handler) RosterCSV(c *gin.Context) {
	result, input, ok := h.runEngine(c)
	if !ok {
		return
	}

	exportID := h.saveExport(c, input, result)

	c.JSON(http.StatusOK, gin.H{
		"export_id":       exportID,
		"csv":             rosterCSV(result.Assignments),
		"hard_violations": result.HardViolations,
		"soft_violations": result.SoftViolations,
	})
}

// runEngine binds and validates the request, runs the engine and records
// usage. On failure it writes the error response and returns ok=false.
func (h *Handler) runEngine(c *gin.Context) (*roster.Result, *models.RosterInput, bool) {
	var input models.RosterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, nil, false
	}
	if err := h.Validate.Struct(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, nil, false
	}

	result, err := roster.Run(&input, h.Engine)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, roster.ErrNoEmployees) || errors.Is(err, roster.ErrNoShiftCodes) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return nil, nil, false
	}

	h.RecordUsage(c, len(result.Assignments), len(input.Employees), len(result.Violations))
	return result, &input, true
}

// RecordUsage records API usage in the database using an efficient upsert
func (h *Handler) RecordUsage(c *gin.Context, assignmentCount, employeeCount, violationCount int) {
	apiKeyRaw, exists := c.Get("apiKey")
	if !exists {
		return
	}
	apiKey := apiKeyRaw.(*database.APIKey)

	today := time.Now().Format("2006-01-02")

	// Use OnConflict for a single-query upsert (supported by both Postgres and SQLite)
	h.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"request_count":     gorm.Expr("request_count + ?", 1),
			"total_assignments": gorm.Expr("total_assignments + ?", assignmentCount),
			"total_employees":   gorm.Expr("total_employees + ?", employeeCount),
			"total_violations":  gorm.Expr("total_violations + ?", violationCount),
		}),
	}).Create(&database.APIUsage{
		KeyID:            apiKey.ID,
		Date:             today,
		RequestCount:     1,
		TotalAssignments: assignmentCount,
		TotalEmployees:   employeeCount,
		TotalViolations:  violationCount,
	})
}

// saveExport persists the run so the roster can be fetched again later.
// Returns 0 when there is no key context to attach the export to.
func (h *Handler) saveExport(c *gin.Context, input *models.RosterInput, result *roster.Result) uint {
	apiKeyRaw, exists := c.Get("apiKey")
	if !exists {
		return 0
	}
	apiKey := apiKeyRaw.(*database.APIKey)

	export := database.RosterExport{
		KeyID:          apiKey.ID,
		StoreID:        input.StoreID,
		StartDate:      input.StartDate,
		EndDate:        input.EndDate,
		HardViolations: result.HardViolations,
		SoftViolations: result.SoftViolations,
		CoverageScore:  result.Metrics.CoverageScore,
		ResolverUsed:   result.ResolverUsed,
	}
	for _, a := range result.Assignments {
		export.Rows = append(export.Rows, database.RosterExportRow{
			EmployeeID: a.EmployeeID,
			Date:       a.Date,
			ShiftCode:  a.ShiftCode,
			Station:    string(a.Station),
		})
	}

	if err := h.DB.Create(&export).Error; err != nil {
		return 0
	}
	return export.ID
}

// rosterCSV flattens the assignment into CSV records
func rosterCSV(assignments []models.ShiftAssignment) string {
	var out strings.Builder
	writer := csv.NewWriter(&out)
	writer.Write([]string{"employee_id", "date", "shift_code", "station", "store_id"})
	for _, a := range assignments {
		writer.Write([]string{a.EmployeeID, a.Date, a.ShiftCode, string(a.Station), a.StoreID})
	}
	writer.Flush()
	return out.String()
}

// toResponse maps an engine result onto the response contract
func toResponse(input *models.RosterInput, result *roster.Result) models.RosterResponse {
	return models.RosterResponse{
		StoreID:        input.StoreID,
		Assignments:    result.Assignments,
		Violations:     result.Violations,
		HardViolations: result.HardViolations,
		SoftViolations: result.SoftViolations,
		Metrics:        result.Metrics,
		Breakdown:      result.Breakdown,
		ResolverUsed:   result.ResolverUsed,
		ProvenOptimal:  result.ProvenOptimal,
		Logs:           result.Logs,
	}
}

// Login handles admin login
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user database.MasterUser
	if err := h.DB.Where("username = ?", req.Username).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := auth.CreateToken(user.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}

// GenerateKey creates a new API key using the HMAC strategy
func (h *Handler) GenerateKey(c *gin.Context) {
	var req struct {
		Name      string `json:"name"`
		RateLimit int    `json:"rate_limit"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	if req.RateLimit == 0 {
		req.RateLimit = 10000
	}

	key := auth.GenerateHMACKey(req.Name)

	preview := "****"
	if len(key) > 8 {
		preview = key[:3] + "..." + key[len(key)-4:]
	}

	apiKey := database.APIKey{
		Key:        key,
		Name:       req.Name,
		KeyPreview: preview,
		RateLimit:  req.RateLimit,
	}

	if err := h.DB.Create(&apiKey).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create key record"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"name": req.Name,
		"key":  key,
	})
}

// ListKeys returns all API keys
func (h *Handler) ListKeys(c *gin.Context) {
	var keys []database.APIKey
	h.DB.Find(&keys)
	c.JSON(http.StatusOK, gin.H{"keys": keys})
}

// RevokeKey deletes an API key
func (h *Handler) RevokeKey(c *gin.Context) {
	id := c.Param("id")
	if err := h.DB.Delete(&database.APIKey{}, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete key"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Key revoked"})
}

// UpdateKeyLimit updates the rate limit for a key
func (h *Handler) UpdateKeyLimit(c *gin.Context) {
	id := c.Param("id")
	var req struct {
		RateLimit int `json:"rate_limit" form:"rate_limit"`
	}

	// Try JSON first, then Form/Query
	if err := c.ShouldBindJSON(&req); err != nil {
		if err := c.ShouldBindQuery(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rate_limit is required"})
			return
		}
	}

	if req.RateLimit == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rate limit"})
		return
	}

	if err := h.DB.Model(&database.APIKey{}).Where("id = ?", id).Update("rate_limit", req.RateLimit).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update key limit"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Rate limit updated successfully"})
}

// GetUsage returns usage stats for a key
func (h *Handler) GetUsage(c *gin.Context) {
	id := c.Param("id")
	var usage []database.APIUsage
	h.DB.Where("key_id = ?", id).Order("date desc").Limit(30).Find(&usage)
	c.JSON(http.StatusOK, gin.H{"usage": usage})
}
