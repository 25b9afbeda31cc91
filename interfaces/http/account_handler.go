package http

import (
	"net/http"

	"clip-and-ship/domain/dto"
	"clip-and-ship/usecase"

	"github.com/gin-gonic/gin"
)

// IAccountHandler serves profile and referral endpoints.
type IAccountHandler interface {
	Profile(c *gin.Context)
	ReferralCode(c *gin.Context)
	CompleteReferral(c *gin.Context)
}

type AccountHandler struct {
	profileUsecase  usecase.IProfileUsecase
	referralUsecase usecase.IReferralUsecase
}

func NewAccountHandler(profileUsecase usecase.IProfileUsecase, referralUsecase usecase.IReferralUsecase) IAccountHandler {
	return &AccountHandler{profileUsecase: profileUsecase, referralUsecase: referralUsecase}
}

// Profile handles GET /api/profile
func (h *AccountHandler) Profile(c *gin.Context) {
	p, err := h.profileUsecase.Get(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err, "Failed to fetch user profile")
		return
	}
	c.JSON(http.StatusOK, p)
}

// ReferralCode handles POST /api/referral/code
func (h *AccountHandler) ReferralCode(c *gin.Context) {
	res, err := h.referralUsecase.Code(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err, "Failed to generate referral code")
		return
	}
	c.JSON(http.StatusOK, res)
}

// CompleteReferral handles POST /functions/complete-referral
func (h *AccountHandler) CompleteReferral(c *gin.Context) {
	var req dto.CompleteReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}
	p, err := h.referralUsecase.Complete(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to complete referral")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"referrer_id":       p.ID,
		"referral_count":    p.ReferralCount,
		"referral_progress": p.ReferralProgress,
		"credits":           p.Credits,
	})
}
