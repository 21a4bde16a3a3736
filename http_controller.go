package auth

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-router"
	"github.com/nyaruka/phonenumbers"
)

// RegisterAuthRoutes mounts the admin identity API:
//
//	POST /register   start registration, dispatches a one-time code
//	POST /verify-otp confirm the code, promotes the pending admin
//	POST /login      issue a bearer token
//	GET  /profile    protected, returns the authenticated admin
//	PUT  /profile    protected, updates profile fields
func RegisterAuthRoutes[T any](app router.Router[T], opts ...AuthControllerOption) {
	controller := NewAuthController(opts...)

	app.Post(controller.Routes.Register, controller.RegistrationCreate).
		SetName("register.post")

	app.Post(controller.Routes.Verify, controller.RegistrationConfirm).
		SetName("verify-otp.post")

	app.Post(controller.Routes.Login, controller.LoginPost).
		SetName("sign-in.post")

	protected := controller.Auther.ProtectedRoute(
		controller.Config,
		controller.Auther.MakeClientRouteAuthErrorHandler(false),
	)

	app.Get(controller.Routes.Profile, controller.ProfileShow, protected).
		SetName("profile.get")
	app.Put(controller.Routes.Profile, controller.ProfileUpdate, protected).
		SetName("profile.put")
}

type AuthControllerRoutes struct {
	Login    string
	Register string
	Verify   string
	Profile  string
}

type AuthController struct {
	Debug        bool
	Logger       Logger
	Repo         RepositoryManager
	Dispatcher   CodeDispatcher
	Routes       *AuthControllerRoutes
	Auther       HTTPAuthenticator
	Config       Config
	ErrorHandler router.ErrorHandler
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:       defLogger{},
		ErrorHandler: defaultErrHandler,
		Dispatcher:   LogCodeDispatcher{},
		Routes: &AuthControllerRoutes{
			Login:    "/login",
			Register: "/register",
			Verify:   "/verify-otp",
			Profile:  "/profile",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in auth controller...")
	}

	if c.Auther == nil {
		panic("Missing HTTPAuthenticator in auth controller...")
	}

	if c.Config == nil {
		panic("Missing Config in auth controller...")
	}

	return c
}

func WithControllerRepo(repo RepositoryManager) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Repo = repo
		return c
	}
}

func WithControllerAuther(auther HTTPAuthenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithControllerConfig(cfg Config) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Config = cfg
		return c
	}
}

func WithControllerDispatcher(dispatcher CodeDispatcher) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Dispatcher = dispatcher
		return c
	}
}

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Logger = logger
		return c
	}
}

// RegistrationCreatePayload is the registration request body
type RegistrationCreatePayload struct {
	FirstName string `form:"first_name" json:"first_name"`
	LastName  string `form:"last_name" json:"last_name"`
	Email     string `form:"email" json:"email"`
	Password  string `form:"password" json:"password"`
	Whatsapp  string `form:"whatsapp" json:"whatsapp"`
	Country   string `form:"country" json:"country"`
	State     string `form:"state" json:"state"`
}

// Validate will validate the payload
func (r RegistrationCreatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 100)),
		validation.Field(&r.Whatsapp, validation.By(ValidateContactHandle)),
		validation.Field(&r.Country, validation.Required),
		validation.Field(&r.State, validation.Required),
	)
}

func (a *AuthController) RegistrationCreate(ctx router.Context) error {
	payload := new(RegistrationCreatePayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("register admin parse payload: ", "error", err)
		return ctx.JSON(fiber.StatusBadRequest, router.ViewContext{
			"msg": "Failed to parse body",
		})
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("register admin validate payload: ", "error", err)
		return ctx.JSON(fiber.StatusBadRequest, router.ViewContext{
			"msg":        "All fields are required",
			"validation": err.Error(),
		})
	}

	req := StartRegistrationMessage{
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Email:     payload.Email,
		Password:  payload.Password,
		Whatsapp:  payload.Whatsapp,
		Country:   payload.Country,
		State:     payload.State,
	}

	if a.Debug {
		fmt.Println("======= AUTH REGISTER ======")
		fmt.Println(print.MaybePrettyJSON(req))
		fmt.Println("============================")
	}

	startRegistration := NewStartRegistrationHandler(a.Repo, a.Dispatcher)
	if err := startRegistration.Execute(ctx.Context(), req); err != nil {
		a.Logger.Error("registration start error: ", "error", err)
		return a.renderError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, router.ViewContext{
		"msg": "OTP sent, verify to complete registration",
	})
}

// RegistrationConfirmPayload is the confirmation request body
type RegistrationConfirmPayload struct {
	Email string `form:"email" json:"email"`
	Code  string `form:"otp" json:"otp"`
}

// Validate will validate the payload
func (r RegistrationConfirmPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Code, validation.Required, validation.Length(6, 6), is.Digit),
	)
}

func (a *AuthController) RegistrationConfirm(ctx router.Context) error {
	payload := new(RegistrationConfirmPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("confirm registration parse payload: ", "error", err)
		return ctx.JSON(fiber.StatusBadRequest, router.ViewContext{
			"msg": "Failed to parse body",
		})
	}

	if err := payload.Validate(); err != nil {
		// a malformed code can never match, reject the same way an
		// unknown one does
		return ctx.JSON(fiber.StatusBadRequest, router.ViewContext{
			"msg": "Invalid or expired OTP",
		})
	}

	confirm := NewConfirmRegistrationHandler(a.Repo)
	if err := confirm.Execute(ctx.Context(), ConfirmRegistrationMessage{
		Email: payload.Email,
		Code:  payload.Code,
	}); err != nil {
		a.Logger.Error("registration confirm error: ", "error", err)
		if goerrors.Is(err, ErrCodeInvalidOrExpired) {
			return ctx.JSON(fiber.StatusBadRequest, router.ViewContext{
				"msg": "Invalid or expired OTP",
			})
		}
		return a.renderError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, router.ViewContext{
		"msg": "Account verified successfully!",
	})
}

// LoginRequest payload
type LoginRequest struct {
	Identifier string `form:"email" json:"email"`
	Password   string `form:"password" json:"password"`
}

// GetIdentifier returns the identifier
func (r LoginRequest) GetIdentifier() string {
	return r.Identifier
}

// GetPassword will return the password
func (r LoginRequest) GetPassword() string {
	return r.Password
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Identifier,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

func (a *AuthController) LoginPost(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("login parse payload: ", "error", err)
		return ctx.JSON(fiber.StatusBadRequest, router.ViewContext{
			"msg": "Failed to parse body",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(fiber.StatusBadRequest, router.ViewContext{
			"msg":        "Email and password are required",
			"validation": err.Error(),
		})
	}

	token, err := a.Auther.Login(ctx, payload)
	if err != nil {
		return a.renderError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, router.ViewContext{
		"msg":   "Login successful",
		"token": token,
	})
}

func (a *AuthController) ProfileShow(ctx router.Context) error {
	identity, ok := IdentityFromContext(ctx.Context())
	if !ok {
		return ctx.JSON(fiber.StatusUnauthorized, router.ViewContext{
			"msg": "Access denied. No token provided.",
		})
	}

	admin, err := a.Repo.Admins().GetByID(ctx.Context(), identity.AdminID)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ctx.JSON(fiber.StatusNotFound, router.ViewContext{
				"msg": "Admin not found",
			})
		}
		return a.renderError(ctx, err)
	}

	// PasswordHash is tagged json:"-", it never serializes
	return ctx.JSON(fiber.StatusOK, admin)
}

// ProfileUpdatePayload carries the mutable profile fields
type ProfileUpdatePayload struct {
	FirstName      string `form:"first_name" json:"first_name"`
	LastName       string `form:"last_name" json:"last_name"`
	Whatsapp       string `form:"whatsapp" json:"whatsapp"`
	Country        string `form:"country" json:"country"`
	State          string `form:"state" json:"state"`
	ProfilePicture string `form:"profile_picture" json:"profile_picture"`
}

// Validate will validate the payload
func (r ProfileUpdatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Length(1, 200)),
		validation.Field(&r.LastName, validation.Length(1, 200)),
		validation.Field(&r.Whatsapp, validation.By(ValidateContactHandle)),
	)
}

func (a *AuthController) ProfileUpdate(ctx router.Context) error {
	identity, ok := IdentityFromContext(ctx.Context())
	if !ok {
		return ctx.JSON(fiber.StatusUnauthorized, router.ViewContext{
			"msg": "Access denied. No token provided.",
		})
	}

	payload := new(ProfileUpdatePayload)
	if err := ctx.Bind(payload); err != nil {
		return ctx.JSON(fiber.StatusBadRequest, router.ViewContext{
			"msg": "Failed to parse body",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(fiber.StatusBadRequest, router.ViewContext{
			"msg":        "Invalid profile fields",
			"validation": err.Error(),
		})
	}

	admin, err := a.Repo.Admins().GetByID(ctx.Context(), identity.AdminID)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ctx.JSON(fiber.StatusNotFound, router.ViewContext{
				"msg": "Admin not found",
			})
		}
		return a.renderError(ctx, err)
	}

	applyProfileUpdate(admin, payload)

	updated, err := a.Repo.Admins().Update(ctx.Context(), admin, repository.UpdateByID(admin.ID.String()))
	if err != nil {
		return a.renderError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, router.ViewContext{
		"message": "Profile updated successfully",
		"admin":   updated,
	})
}

func applyProfileUpdate(admin *Admin, payload *ProfileUpdatePayload) {
	if payload.FirstName != "" {
		admin.FirstName = payload.FirstName
	}
	if payload.LastName != "" {
		admin.LastName = payload.LastName
	}
	if payload.Whatsapp != "" {
		admin.Whatsapp = payload.Whatsapp
	}
	if payload.Country != "" {
		admin.Country = payload.Country
	}
	if payload.State != "" {
		admin.State = payload.State
	}
	if payload.ProfilePicture != "" {
		admin.ProfilePicture = payload.ProfilePicture
	}
}

func (a *AuthController) renderError(ctx router.Context, err error) error {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.Code > 0 {
		return ctx.JSON(richErr.Code, router.ViewContext{
			"msg": richErr.Message,
		})
	}
	return a.ErrorHandler(ctx, err)
}

// ValidateContactHandle checks the optional contact handle parses as an
// international phone number.
func ValidateContactHandle(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}

	num, err := phonenumbers.Parse(s, "")
	if err != nil {
		return errors.New("must be an international phone number")
	}

	if !phonenumbers.IsValidNumber(num) {
		return errors.New("must be a valid phone number")
	}

	return nil
}

func defaultErrHandler(c router.Context, err error) error {
	return c.JSON(fiber.StatusInternalServerError, router.ViewContext{
		"msg": "Internal server error",
	})
}
