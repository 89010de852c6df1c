package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/brewhouse/storefront/internal/common"
	"github.com/brewhouse/storefront/internal/config"
	inErrors "github.com/brewhouse/storefront/internal/errors"
	"github.com/brewhouse/storefront/internal/log"
	inOtel "github.com/brewhouse/storefront/internal/otel"
	"github.com/brewhouse/storefront/internal/repository"
	"github.com/brewhouse/storefront/user/internal/mail"
	"github.com/brewhouse/storefront/user/pkg/request"
	"github.com/brewhouse/storefront/user/pkg/response"
)

const resetTokenTTL = time.Hour

type UserService struct {
	queries *repository.Queries
	mailer  mail.Mailer
	config  config.Application
}

func NewUserService(
	queries *repository.Queries,
	mailer mail.Mailer,
	config config.Application,
) *UserService {
	return &UserService{queries: queries, mailer: mailer, config: config}
}

func splitName(name string) (string, string) {
	first, last, _ := strings.Cut(strings.TrimSpace(name), " ")
	return first, last
}

func (svc *UserService) Register(
	c context.Context,
	param request.Register,
) (response.Auth, error) {
	c, span := inOtel.Tracer.Start(c, "UserService Register")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserService Register").
		Str(log.KeyEmail, param.Email).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "checking email availability").Logger()
	logger.Info().Msg("checking email availability")
	_, err := svc.queries.FindUserByEmail(c, param.Email)
	if err == nil {
		err = fmt.Errorf("email=%s with error=%w", param.Email, inErrors.ErrEmailTaken)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Auth{}, err
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		err = fmt.Errorf("failed finding user by email with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Auth{}, err
	}
	logger.Info().Msg("email is available")

	logger = logger.With().Str(log.KeyProcess, "hashing password").Logger()
	logger.Info().Msg("hashing password")
	hashed, err := bcrypt.GenerateFromPassword([]byte(param.Password), bcrypt.DefaultCost)
	if err != nil {
		err = fmt.Errorf("failed hashing password with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Auth{}, err
	}
	logger.Info().Msg("hashed password")

	logger = logger.With().Str(log.KeyProcess, "inserting user").Logger()
	logger.Info().Msg("inserting user")
	firstName, lastName := splitName(param.Name)
	user, err := svc.queries.InsertUser(c, repository.InsertUserParams{
		Email:        param.Email,
		PasswordHash: string(hashed),
		FirstName:    firstName,
		LastName:     lastName,
	})
	if err != nil {
		err = fmt.Errorf("failed inserting user with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Auth{}, err
	}
	logger = logger.With().Int64(log.KeyUserID, user.ID).Logger()
	logger.Info().Msg("inserted user")

	logger = logger.With().Str(log.KeyProcess, "creating token").Logger()
	logger.Info().Msg("creating token")
	token, err := common.CreateToken(user.ID, svc.config.SecretKey)
	if err != nil {
		err = fmt.Errorf("failed creating token with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Auth{}, err
	}
	logger.Info().Msg("created token")

	return user.AuthResponse(token), nil
}

func (svc *UserService) Login(c context.Context, param request.Login) (response.Auth, error) {
	c, span := inOtel.Tracer.Start(c, "UserService Login")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserService Login").
		Str(log.KeyEmail, param.Email).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding user by email").Logger()
	logger.Info().Msg("finding user by email")
	user, err := svc.queries.FindUserByEmail(c, param.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("email=%s with error=%w", param.Email, inErrors.ErrPasswordMismatch)
		} else {
			err = fmt.Errorf("failed finding user by email with error=%w", err)
		}
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Auth{}, err
	}
	logger = logger.With().Int64(log.KeyUserID, user.ID).Logger()
	logger.Info().Msg("found user by email")

	logger = logger.With().Str(log.KeyProcess, "verifying password").Logger()
	logger.Info().Msg("verifying password")
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(param.Password)); err != nil {
		err = fmt.Errorf("failed verifying password with error=%w", inErrors.ErrPasswordMismatch)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Auth{}, err
	}
	logger.Info().Msg("verified password")

	logger = logger.With().Str(log.KeyProcess, "creating token").Logger()
	logger.Info().Msg("creating token")
	token, err := common.CreateToken(user.ID, svc.config.SecretKey)
	if err != nil {
		err = fmt.Errorf("failed creating token with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Auth{}, err
	}
	logger.Info().Msg("created token")

	return user.AuthResponse(token), nil
}

func (svc *UserService) ForgotPassword(
	c context.Context,
	param request.ForgotPassword,
) (response.ForgotPassword, error) {
	c, span := inOtel.Tracer.Start(c, "UserService ForgotPassword")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserService ForgotPassword").
		Str(log.KeyEmail, param.Email).
		Logger()

	// the reply never reveals whether the email exists
	reply := response.ForgotPassword{
		Message: "If the email exists, a password reset link has been sent",
	}

	logger = logger.With().Str(log.KeyProcess, "finding user by email").Logger()
	logger.Info().Msg("finding user by email")
	user, err := svc.queries.FindUserByEmail(c, param.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.Info().Msg("email is not registered, skipping reset token")
			return reply, nil
		}
		err = fmt.Errorf("failed finding user by email with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.ForgotPassword{}, err
	}
	logger = logger.With().Int64(log.KeyUserID, user.ID).Logger()
	logger.Info().Msg("found user by email")

	logger = logger.With().Str(log.KeyProcess, "invalidating previous reset tokens").Logger()
	logger.Info().Msg("invalidating previous reset tokens")
	if err := svc.queries.InvalidateResetTokens(c, user.ID); err != nil {
		err = fmt.Errorf("failed invalidating previous reset tokens with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.ForgotPassword{}, err
	}
	logger.Info().Msg("invalidated previous reset tokens")

	logger = logger.With().Str(log.KeyProcess, "inserting reset token").Logger()
	logger.Info().Msg("inserting reset token")
	token := uuid.NewString()
	err = svc.queries.InsertResetToken(c, repository.InsertResetTokenParams{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: pgtype.Timestamptz{Time: time.Now().Add(resetTokenTTL), Valid: true},
	})
	if err != nil {
		err = fmt.Errorf("failed inserting reset token with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.ForgotPassword{}, err
	}
	logger.Info().Msg("inserted reset token")

	logger = logger.With().Str(log.KeyProcess, "sending reset email").Logger()
	logger.Info().Msg("sending reset email")
	if err := svc.mailer.SendPasswordReset(c, user.Email, token); err != nil {
		err = fmt.Errorf("failed sending reset email with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
	} else {
		logger.Info().Msg("sent reset email")
	}

	if svc.config.Env == "development" {
		reply.DebugToken = token
	}
	return reply, nil
}

func (svc *UserService) ResetPassword(c context.Context, param request.ResetPassword) error {
	c, span := inOtel.Tracer.Start(c, "UserService ResetPassword")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserService ResetPassword").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding reset token").Logger()
	logger.Info().Msg("finding reset token")
	row, err := svc.queries.FindResetToken(c, param.Token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = inErrors.ErrResetTokenInvalid
		} else {
			err = fmt.Errorf("failed finding reset token with error=%w", err)
		}
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger = logger.With().Int64(log.KeyUserID, row.UserID).Logger()
	logger.Info().Msg("found reset token")

	logger = logger.With().Str(log.KeyProcess, "hashing new password").Logger()
	logger.Info().Msg("hashing new password")
	hashed, err := bcrypt.GenerateFromPassword([]byte(param.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		err = fmt.Errorf("failed hashing new password with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("hashed new password")

	logger = logger.With().Str(log.KeyProcess, "updating user password").Logger()
	logger.Info().Msg("updating user password")
	affected, err := svc.queries.UpdateUserPassword(c, row.UserID, string(hashed))
	if err != nil {
		err = fmt.Errorf("failed updating user password with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	if affected == 0 {
		err = fmt.Errorf("userId=%d with error=%w", row.UserID, inErrors.ErrUserNotFound)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("updated user password")

	logger = logger.With().Str(log.KeyProcess, "marking reset token used").Logger()
	logger.Info().Msg("marking reset token used")
	if _, err := svc.queries.MarkResetTokenUsed(c, row.Token); err != nil {
		err = fmt.Errorf("failed marking reset token used with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("marked reset token used")

	logger = logger.With().Str(log.KeyProcess, "sending confirmation email").Logger()
	logger.Info().Msg("sending confirmation email")
	if err := svc.mailer.SendPasswordChanged(c, row.Email); err != nil {
		err = fmt.Errorf("failed sending confirmation email with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
	} else {
		logger.Info().Msg("sent confirmation email")
	}

	return nil
}
