package delivery

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/guirluz/rental-backend/internal/app"
	"github.com/guirluz/rental-backend/internal/app/models"
	"github.com/guirluz/rental-backend/internal/middleware"
	"github.com/guirluz/rental-backend/internal/utils/logger"
	"github.com/guirluz/rental-backend/internal/utils/responses"
	"go.uber.org/zap"
)

type UserDelivery struct {
	userUsecase app.UserUsecase
}

func CreateUserDelivery(userUsecase app.UserUsecase) *UserDelivery {
	return &UserDelivery{
		userUsecase: userUsecase,
	}
}

func (d *UserDelivery) Register(w http.ResponseWriter, r *http.Request) {
	const funcName = "UserDelivery.Register"
	logger.Debug("registering user", zap.String("function", funcName))

	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		responses.DoBadResponseAndLog(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := d.userUsecase.Register(r.Context(), req)
	if err != nil {
		responses.ResponseErrorAndLog(w, err, funcName)
		return
	}

	responses.DoJSONResponse(w, http.StatusOK, "user registered successfully", user)
}

func (d *UserDelivery) Login(w http.ResponseWriter, r *http.Request) {
	const funcName = "UserDelivery.Login"
	logger.Debug("logging user in", zap.String("function", funcName))

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		responses.DoBadResponseAndLog(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tokens, err := d.userUsecase.Login(r.Context(), req)
	if err != nil {
		responses.ResponseErrorAndLog(w, err, funcName)
		return
	}

	responses.DoJSONResponse(w, http.StatusOK, "login successful", tokens)
}

func (d *UserDelivery) Refresh(w http.ResponseWriter, r *http.Request) {
	const funcName = "UserDelivery.Refresh"
	logger.Debug("refreshing access token", zap.String("function", funcName))

	var req models.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		responses.DoBadResponseAndLog(w, http.StatusBadRequest, "invalid request body")
		return
	}

	accessToken, err := d.userUsecase.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		responses.ResponseErrorAndLog(w, err, funcName)
		return
	}

	responses.DoJSONResponse(w, http.StatusOK, "token renewed", map[string]string{
		"access_token": accessToken,
	})
}

func (d *UserDelivery) Me(w http.ResponseWriter, r *http.Request) {
	const funcName = "UserDelivery.Me"

	email, ok := middleware.EmailFromContext(r.Context())
	if !ok {
		responses.DoBadResponseAndLog(w, http.StatusUnauthorized, "invalid or expired token")
		return
	}

	user, err := d.userUsecase.GetUserByEmail(r.Context(), email)
	if err != nil {
		responses.ResponseErrorAndLog(w, err, funcName)
		return
	}

	responses.DoJSONResponse(w, http.StatusOK, "authenticated user", user)
}

func (d *UserDelivery) CreateUser(w http.ResponseWriter, r *http.Request) {
	const funcName = "UserDelivery.CreateUser"
	logger.Debug("creating user", zap.String("function", funcName))

	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		responses.DoBadResponseAndLog(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := d.userUsecase.CreateUser(r.Context(), req)
	if err != nil {
		responses.ResponseErrorAndLog(w, err, funcName)
		return
	}

	responses.DoJSONResponse(w, http.StatusOK, "user created successfully", user)
}

func (d *UserDelivery) GetUser(w http.ResponseWriter, r *http.Request) {
	const funcName = "UserDelivery.GetUser"

	userID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		responses.DoBadResponseAndLog(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := d.userUsecase.GetUser(r.Context(), userID)
	if err != nil {
		responses.ResponseErrorAndLog(w, err, funcName)
		return
	}

	responses.DoJSONResponse(w, http.StatusOK, "user retrieved successfully", user)
}

func (d *UserDelivery) GetAllUsers(w http.ResponseWriter, r *http.Request) {
	const funcName = "UserDelivery.GetAllUsers"

	users, err := d.userUsecase.GetAllUsers(r.Context())
	if err != nil {
		responses.ResponseErrorAndLog(w, err, funcName)
		return
	}

	responses.DoJSONResponse(w, http.StatusOK, "users retrieved successfully", users)
}

func (d *UserDelivery) UpdateUser(w http.ResponseWriter, r *http.Request) {
	const funcName = "UserDelivery.UpdateUser"

	userID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		responses.DoBadResponseAndLog(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req models.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		responses.DoBadResponseAndLog(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := d.userUsecase.UpdateUser(r.Context(), userID, req)
	if err != nil {
		responses.ResponseErrorAndLog(w, err, funcName)
		return
	}

	responses.DoJSONResponse(w, http.StatusOK, "user updated successfully", user)
}

func (d *UserDelivery) DeleteUser(w http.ResponseWriter, r *http.Request) {
	const funcName = "UserDelivery.DeleteUser"

	userID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		responses.DoBadResponseAndLog(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := d.userUsecase.DeleteUser(r.Context(), userID); err != nil {
		responses.ResponseErrorAndLog(w, err, funcName)
		return
	}

	responses.DoJSONResponse(w, http.StatusOK, "user deleted successfully", map[string]int64{
		"id": userID,
	})
}
