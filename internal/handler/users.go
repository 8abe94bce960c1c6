package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/dholimara/homestay-api/internal/apperr"
	"github.com/dholimara/homestay-api/internal/logger"
	"github.com/dholimara/homestay-api/internal/media"
	"github.com/dholimara/homestay-api/internal/model"
	"github.com/dholimara/homestay-api/internal/utils"
)

type registerReq struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Username  string `json:"username" validate:"required,max=150"`
	Password  string `json:"password" validate:"required"`
	Password2 string `json:"password2" validate:"required"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
}

// Register creates a customer account and signs it in.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := bindValid(c, &req); err != nil {
		return fail(c, err)
	}
	if req.Password != req.Password2 {
		return fail(c, apperr.Field("password", "Password fields didn't match."))
	}
	if problems := utils.PasswordProblems(req.Password, req.Email, req.Username); len(problems) > 0 {
		return fail(c, apperr.Field("password", strings.Join(problems, " ")))
	}
	hash, err := utils.HashPassword(req.Password, h.cfg.BcryptCost)
	if err != nil {
		return fail(c, apperr.Internal("hash password", err))
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	u := &model.User{
		Email:        req.Email,
		Username:     strings.TrimSpace(req.Username),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		PasswordHash: hash,
	}
	if err := h.users.Create(ctx, u); err != nil {
		return fail(c, err)
	}
	h.log.Info("user registered", "user_id", u.ID)

	resp, err := h.issue(ctx, u)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, resp)
}

// UserHandler serves /users/profiles/. Customers only ever see themselves.
type UserHandler struct {
	users   UserStore
	storage *media.Storage
	media   media.Resolver
	log     *logger.Logger
}

func NewUserHandler(users UserStore, storage *media.Storage, resolver media.Resolver, log *logger.Logger) *UserHandler {
	if users == nil || storage == nil || log == nil {
		panic("nil dependency passed to NewUserHandler")
	}
	return &UserHandler{users: users, storage: storage, media: resolver, log: log}
}

func (h *UserHandler) out(c echo.Context, u *model.User) *model.User {
	u.ProfileImage = h.media.ForRequest(c)(u.ProfileImage)
	return u
}

// List returns every profile for staff and the caller's own otherwise.
func (h *UserHandler) List(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	if !a.Staff {
		u, err := h.users.GetByID(ctx, a.UserID)
		if err != nil {
			return fail(c, err)
		}
		return items(c, []model.User{*h.out(c, u)})
	}
	all, err := h.users.List(ctx)
	if err != nil {
		return fail(c, err)
	}
	for i := range all {
		h.out(c, &all[i])
	}
	return items(c, all)
}

func (h *UserHandler) Me(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	u, err := h.users.GetByID(ctx, a.UserID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, h.out(c, u))
}

func (h *UserHandler) Get(c echo.Context) error {
	u, err := h.visible(c)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, h.out(c, u))
}

type profileReq struct {
	Username    *string `json:"username" validate:"omitempty,min=1,max=150"`
	FirstName   *string `json:"first_name" validate:"omitempty,max=150"`
	LastName    *string `json:"last_name" validate:"omitempty,max=150"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,max=15"`
	Bio         *string `json:"bio" validate:"omitempty,max=500"`
}

// Update handles PUT and PATCH with a JSON or multipart body. A multipart
// profile_image file replaces the stored one, which is then deleted.
// Email is read-only.
func (h *UserHandler) Update(c echo.Context) error {
	u, err := h.visible(c)
	if err != nil {
		return fail(c, err)
	}

	var req profileReq
	multipart := strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm)
	if multipart {
		req = profileFromForm(c)
	} else if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, err)
	}
	if c.Request().Method == http.MethodPut && req.Username != nil && strings.TrimSpace(*req.Username) == "" {
		return fail(c, apperr.Field("username", "This field may not be blank."))
	}

	apply := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	apply(&u.Username, req.Username)
	apply(&u.FirstName, req.FirstName)
	apply(&u.LastName, req.LastName)
	apply(&u.PhoneNumber, req.PhoneNumber)
	apply(&u.Bio, req.Bio)

	old := u.ProfileImage
	var saved string
	if multipart {
		if fh, err := c.FormFile("profile_image"); err == nil {
			saved, err = h.storage.Save("profile_images", fh)
			if err != nil {
				return fail(c, uploadError("profile_image", err))
			}
			u.ProfileImage = model.Image(saved)
		}
	}

	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.users.UpdateProfile(ctx, u); err != nil {
		if saved != "" {
			_ = h.storage.Delete(saved)
		}
		return fail(c, err)
	}
	if saved != "" && old != "" {
		if err := h.storage.Delete(string(old)); err != nil {
			h.log.Warn("delete replaced profile image failed", "user_id", u.ID, "error", err)
		}
	}
	return c.JSON(http.StatusOK, h.out(c, u))
}

// Delete removes an account. Only the owner or staff may do so.
func (h *UserHandler) Delete(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return fail(c, err)
	}
	u, err := h.visible(c)
	if err != nil {
		return fail(c, err)
	}
	if u.ID != a.UserID && !a.Staff {
		return fail(c, apperr.Forbidden("You can only delete your account."))
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.users.Delete(ctx, u.ID); err != nil {
		return fail(c, err)
	}
	if u.ProfileImage != "" {
		_ = h.storage.Delete(string(u.ProfileImage))
	}
	h.log.Info("user deleted", "user_id", u.ID, "by", a.UserID)
	return c.NoContent(http.StatusNoContent)
}

// visible loads the :id user if the caller may see it. Other users' ids
// read as not found for non-staff callers.
func (h *UserHandler) visible(c echo.Context) (*model.User, error) {
	a, err := actor(c)
	if err != nil {
		return nil, err
	}
	id, err := pathID(c)
	if err != nil {
		return nil, err
	}
	if id != a.UserID && !a.Staff {
		return nil, apperr.NotFound("User")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	return h.users.GetByID(ctx, id)
}

func profileFromForm(c echo.Context) profileReq {
	field := func(name string) *string {
		form, err := c.MultipartForm()
		if err != nil {
			return nil
		}
		if v, ok := form.Value[name]; ok && len(v) > 0 {
			return &v[0]
		}
		return nil
	}
	return profileReq{
		Username:    field("username"),
		FirstName:   field("first_name"),
		LastName:    field("last_name"),
		PhoneNumber: field("phone_number"),
		Bio:         field("bio"),
	}
}

func uploadError(field string, err error) error {
	switch {
	case errors.Is(err, media.ErrTooLarge):
		return apperr.Field(field, "The uploaded file is too large.")
	case errors.Is(err, media.ErrUnsupportedType):
		return apperr.Field(field, "Upload a valid image. Allowed: jpg, jpeg, png, gif, webp.")
	case errors.Is(err, media.ErrInvalidFolder):
		return apperr.Field("folder", "Unknown upload folder.")
	}
	return apperr.Internal("save upload", err)
}
