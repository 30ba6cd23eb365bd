package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/JamesCAlger/social-media-sub002/internal/service"
)

// AccountHandler handles account administration endpoints.
type AccountHandler struct {
	accounts *service.AccountService
}

// NewAccountHandler creates a new account handler.
// Parameters:
//   - accounts: account service instance.
// Returns:
//   - *AccountHandler: initialized handler.
func NewAccountHandler(accounts *service.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// CreateAccountRequest represents the account registration request.
type CreateAccountRequest struct {
	Slug              string   `json:"slug" binding:"required"`
	DisplayName       string   `json:"display_name"`
	Platform          string   `json:"platform"`
	BusinessAccountID string   `json:"business_account_id"`
	PageID            string   `json:"page_id"`
	AccessToken       string   `json:"access_token"`
	TokenExpiresAt    string   `json:"token_expires_at"`
	ContentNiche      string   `json:"content_niche"`
	CaptionHashtags   []string `json:"caption_hashtags"`
	PostingWindow     string   `json:"posting_window"`
}

// CredentialRequest represents a manual credential override. Both fields
// are required; the pair is stored in a single write.
type CredentialRequest struct {
	AccessToken    string `json:"access_token" binding:"required"`
	TokenExpiresAt string `json:"token_expires_at" binding:"required"`
}

// CreateAccount handles POST /api/v1/accounts.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	in := service.CreateAccountInput{
		Slug:              req.Slug,
		DisplayName:       req.DisplayName,
		Platform:          req.Platform,
		BusinessAccountID: req.BusinessAccountID,
		PageID:            req.PageID,
		AccessToken:       req.AccessToken,
		ContentNiche:      req.ContentNiche,
		CaptionHashtags:   req.CaptionHashtags,
		PostingWindow:     req.PostingWindow,
	}
	if req.TokenExpiresAt != "" {
		expiry, err := time.Parse(time.RFC3339, req.TokenExpiresAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "token_expires_at must be RFC3339"})
			return
		}
		in.TokenExpiresAt = &expiry
	}

	account, err := h.accounts.Create(c.Request.Context(), in)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to create account: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, account)
}

// ListAccounts handles GET /api/v1/accounts.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *AccountHandler) ListAccounts(c *gin.Context) {
	accounts, err := h.accounts.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list accounts: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accounts": accounts,
		"total":    len(accounts),
	})
}

// GetAccount handles GET /api/v1/accounts/:slug.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *AccountHandler) GetAccount(c *gin.Context) {
	account, err := h.accounts.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		return
	}

	c.JSON(http.StatusOK, account)
}

// SetCredential handles PUT /api/v1/accounts/:id/credential.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *AccountHandler) SetCredential(c *gin.Context) {
	var req CredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	expiry, err := time.Parse(time.RFC3339, req.TokenExpiresAt)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token_expires_at must be RFC3339"})
		return
	}

	account, err := h.accounts.SetCredential(c.Request.Context(), c.Param("id"), req.AccessToken, expiry)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to set credential: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, account)
}
