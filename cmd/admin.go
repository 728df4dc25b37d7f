package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ariebrainware/clinic-admin/config"
	"github.com/ariebrainware/clinic-admin/model"
	"github.com/ariebrainware/clinic-admin/util"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

const minPasswordLength = 8

type operatorInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

func (in operatorInput) validate() error {
	if strings.TrimSpace(in.Email) == "" || !strings.Contains(in.Email, "@") {
		return errors.New("a valid --email is required")
	}
	if len(in.Password) < minPasswordLength {
		return fmt.Errorf("--password must be at least %d characters", minPasswordLength)
	}
	if in.Role != model.RoleAdmin && in.Role != model.RoleStaff {
		return fmt.Errorf("--role must be %s or %s", model.RoleAdmin, model.RoleStaff)
	}
	return nil
}

// upsertOperator creates the operator or, when the email exists, resets its password, role
// and lock state and ends every session it holds. It reports whether the user was created.
func upsertOperator(ctx context.Context, db *gorm.DB, in operatorInput) (model.User, bool, error) {
	role, err := model.RoleByName(db, in.Role)
	if err != nil {
		return model.User{}, false, err
	}
	salt, err := util.GenerateSalt()
	if err != nil {
		return model.User{}, false, err
	}
	hash, err := util.HashPasswordArgon2(in.Password, salt)
	if err != nil {
		return model.User{}, false, err
	}

	email := util.NormalizeEmail(in.Email)
	var user model.User
	err = db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = model.User{
			Name:         util.NormalizeName(in.Name),
			Email:        email,
			Password:     hash,
			PasswordSalt: salt,
			RoleID:       role.ID,
		}
		if err := db.WithContext(ctx).Create(&user).Error; err != nil {
			return model.User{}, false, fmt.Errorf("create operator: %w", err)
		}
		util.LogSecurityEvent(util.SecurityEvent{
			EventType: util.EventAccountCreated,
			UserID:    fmt.Sprintf("%d", user.ID),
			Email:     user.Email,
			Message:   "Operator created from the command line",
		})
		return user, true, nil
	}
	if err != nil {
		return model.User{}, false, fmt.Errorf("find operator: %w", err)
	}

	user.Password = hash
	user.PasswordSalt = salt
	user.RoleID = role.ID
	user.ResetFailures()
	if name := util.NormalizeName(in.Name); name != "" {
		user.Name = name
	}
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Select("name", "password", "password_salt", "role_id", "failed_attempts", "locked_until").Updates(&user).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", user.ID).Delete(&model.Session{}).Error
	})
	if err != nil {
		return model.User{}, false, fmt.Errorf("update operator: %w", err)
	}
	if err := util.InvalidateUserSessions(ctx, user.ID); err != nil {
		logger := util.Logger()
		logger.Warn().Err(err).Uint("user_id", user.ID).Msg("failed to drop cached sessions")
	}
	return user, false, nil
}

func createAdminCmd() *cobra.Command {
	var in operatorInput
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a dashboard operator or reset an existing operator's password",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := in.validate(); err != nil {
				return err
			}
			db, err := config.ConnectMySQL()
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			if err := migrateSchema(db); err != nil {
				return err
			}
			if _, err := config.ConnectRedis(); err != nil {
				logger := util.Logger()
				logger.Warn().Err(err).Msg("redis unavailable, cached sessions are left to expire")
			}
			user, created, err := upsertOperator(cmd.Context(), db, in)
			if err != nil {
				return err
			}
			action := "updated"
			if created {
				action = "created"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "operator %s (%s) %s\n", user.Email, in.Role, action)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "Administrator", "display name")
	cmd.Flags().StringVar(&in.Email, "email", "", "login email")
	cmd.Flags().StringVar(&in.Password, "password", "", "login password")
	cmd.Flags().StringVar(&in.Role, "role", model.RoleAdmin, "Admin or Staff")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
