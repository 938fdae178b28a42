package user

//go:generate mockgen -source=user.go -destination=mock_user.go -package=user

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/GlebRadaev/stockfolio/internal/domain"
	"github.com/GlebRadaev/stockfolio/internal/dto"
	"github.com/GlebRadaev/stockfolio/internal/handlers/httperr"
	"github.com/GlebRadaev/stockfolio/pkg/utils"
)

const maxPictureSize = 10 << 20

type Service interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, bool, error)
	Get(ctx context.Context, clerkID string) (*domain.User, error)
	Update(ctx context.Context, clerkID string, upd domain.UserUpdate) (*domain.User, error)
	Delete(ctx context.Context, clerkID string) (*domain.User, error)
	UpdatePicture(ctx context.Context, userID int, filename string, file io.Reader) (*domain.User, error)
}

type QueryService interface {
	Incomes(ctx context.Context, userID int) ([]domain.LedgerEntry, error)
	Losses(ctx context.Context, userID int) ([]domain.LedgerEntry, error)
	OtherUsers(ctx context.Context, userID int) ([]domain.UserSummary, error)
}

type UserHandler struct {
	userService  Service
	queryService QueryService
}

func New(userService Service, queryService QueryService) *UserHandler {
	return &UserHandler{
		userService:  userService,
		queryService: queryService,
	}
}

// CreateUser godoc
//
//	@Summary		Create a user
//	@Description	Register a user coming from the identity provider. Repeated calls with the same clerkId return the stored user.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.CreateUserRequestDTO	true	"User data"
//	@Success		201		{object}	dto.UserResponseDTO			"User created"
//	@Success		200		{object}	dto.UserResponseDTO			"User already exists"
//	@Failure		400		{object}	utils.Response				"Missing or invalid field"
//	@Failure		500		{object}	utils.Response				"Internal server error"
//	@Router			/api/user [post]
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, created, err := h.userService.Create(r.Context(), req.ToDomain())
	if err != nil {
		httperr.Respond(w, r, err)
		return
	}
	if !created {
		utils.RespondWithJSON(w, http.StatusOK, dto.UserResponseDTO{Message: "User already exists", User: dto.NewUserDTO(user)})
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.UserResponseDTO{Message: "User created successfully", User: dto.NewUserDTO(user)})
}

// GetUser godoc
//
//	@Summary	Get a user by clerk id
//	@Tags		Users
//	@Produce	json
//	@Param		id	path		string	true	"Clerk id"
//	@Success	200	{object}	dto.UserResponseDTO
//	@Failure	404	{object}	utils.Response	"User not found"
//	@Failure	500	{object}	utils.Response	"Internal server error"
//	@Router		/api/user/{id} [get]
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httperr.Respond(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.UserResponseDTO{Message: "User found", User: dto.NewUserDTO(user)})
}

// UpdateUser godoc
//
//	@Summary	Update a user by clerk id
//	@Tags		Users
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string						true	"Clerk id"
//	@Param		request	body		dto.UpdateUserRequestDTO	true	"Fields to change"
//	@Success	200		{object}	dto.UserResponseDTO
//	@Failure	400		{object}	utils.Response	"No valid fields to update"
//	@Failure	404		{object}	utils.Response	"User not found"
//	@Failure	500		{object}	utils.Response	"Internal server error"
//	@Router		/api/user/{id} [patch]
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateUserRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.userService.Update(r.Context(), chi.URLParam(r, "id"), req.ToDomain())
	if err != nil {
		httperr.Respond(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.UserResponseDTO{Message: "Updated successfully", User: dto.NewUserDTO(user)})
}

// DeleteUser godoc
//
//	@Summary	Delete a user by clerk id
//	@Tags		Users
//	@Produce	json
//	@Param		id	path		string	true	"Clerk id"
//	@Success	200	{object}	dto.UserResponseDTO
//	@Failure	400	{object}	utils.Response	"User still owns records"
//	@Failure	404	{object}	utils.Response	"User not found"
//	@Failure	500	{object}	utils.Response	"Internal server error"
//	@Router		/api/user/{id} [delete]
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httperr.Respond(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.UserResponseDTO{Message: "User deleted successfully", User: dto.NewUserDTO(user)})
}

// GetIncomes godoc
//
//	@Summary	List income entries of a user
//	@Tags		Users
//	@Produce	json
//	@Param		id	path		int	true	"User id"
//	@Success	200	{object}	dto.IncomesResponseDTO
//	@Failure	400	{object}	utils.Response	"Invalid user id"
//	@Failure	500	{object}	utils.Response	"Internal server error"
//	@Router		/api/user/{id}/incomes [get]
func (h *UserHandler) GetIncomes(w http.ResponseWriter, r *http.Request) {
	userID, err := httperr.PathInt(r, "id")
	if err != nil {
		httperr.Respond(w, r, err)
		return
	}
	entries, err := h.queryService.Incomes(r.Context(), userID)
	if err != nil {
		httperr.Respond(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewIncomesResponseDTO(entries))
}

// GetLosses godoc
//
//	@Summary	List loss entries of a user
//	@Tags		Users
//	@Produce	json
//	@Param		id	path		int	true	"User id"
//	@Success	200	{object}	dto.LossesResponseDTO
//	@Failure	400	{object}	utils.Response	"Invalid user id"
//	@Failure	500	{object}	utils.Response	"Internal server error"
//	@Router		/api/user/{id}/losses [get]
func (h *UserHandler) GetLosses(w http.ResponseWriter, r *http.Request) {
	userID, err := httperr.PathInt(r, "id")
	if err != nil {
		httperr.Respond(w, r, err)
		return
	}
	entries, err := h.queryService.Losses(r.Context(), userID)
	if err != nil {
		httperr.Respond(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewLossesResponseDTO(entries))
}

// GetOtherUsers godoc
//
//	@Summary		List every other user
//	@Description	Balances are never included.
//	@Tags			Users
//	@Produce		json
//	@Param			id	path		int	true	"User id to exclude"
//	@Success		200	{object}	dto.UsersResponseDTO
//	@Failure		400	{object}	utils.Response	"Invalid user id"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/user/{id}/others [get]
func (h *UserHandler) GetOtherUsers(w http.ResponseWriter, r *http.Request) {
	userID, err := httperr.PathInt(r, "id")
	if err != nil {
		httperr.Respond(w, r, err)
		return
	}
	users, err := h.queryService.OtherUsers(r.Context(), userID)
	if err != nil {
		httperr.Respond(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewUsersResponseDTO(users))
}

// UpdatePicture godoc
//
//	@Summary	Replace the profile picture
//	@Tags		Users
//	@Accept		multipart/form-data
//	@Produce	json
//	@Param		id				path		int		true	"User id"
//	@Param		profile_picture	formData	file	true	"Image file"
//	@Success	200				{object}	dto.UserResponseDTO
//	@Failure	400				{object}	utils.Response	"Profile picture is required"
//	@Failure	404				{object}	utils.Response	"User not found"
//	@Failure	500				{object}	utils.Response	"Internal server error"
//	@Router		/api/user/{id}/picture [patch]
func (h *UserHandler) UpdatePicture(w http.ResponseWriter, r *http.Request) {
	userID, err := httperr.PathInt(r, "id")
	if err != nil {
		httperr.Respond(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxPictureSize)
	file, header, err := r.FormFile("profile_picture")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Profile picture is required")
		return
	}
	defer file.Close()

	if ct := header.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		utils.RespondWithError(w, http.StatusBadRequest, "Profile picture must be an image")
		return
	}

	user, err := h.userService.UpdatePicture(r.Context(), userID, header.Filename, file)
	if err != nil {
		httperr.Respond(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.UserResponseDTO{Message: "Profile picture updated successfully", User: dto.NewUserDTO(user)})
}
