package cmd

import (
	"fmt"
	"log"

	"github.com/frahmantamala/auth-service/internal/auth"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with the baseline permissions, an Admin role and an admin user.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		db, err := initGorm(sqlxDB)
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			for _, table := range []string{"user_roles", "role_permissions", "audit_logs", "users", "roles", "permissions"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear table %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		permissions := []struct {
			Name string
			Desc string
		}{
			{"CanViewReports", "Can view reports and audit logs"},
			{"CanEditUsers", "Can manage user accounts"},
			{"CanManageRoles", "Can manage roles and permissions"},
		}

		for _, p := range permissions {
			var pid int64
			row := db.Raw("SELECT id FROM permissions WHERE name = ?", p.Name).Row()
			if err := row.Scan(&pid); err != nil {
				if err := db.Exec("INSERT INTO permissions (name, description) VALUES (?, ?)", p.Name, p.Desc).Error; err != nil {
					log.Fatalf("failed to insert permission %s: %v", p.Name, err)
				}
				fmt.Println("Seeded permission:", p.Name)
			}
		}

		adminRoleName := "Admin"
		var adminRoleID int64
		if err := db.Raw("SELECT id FROM roles WHERE name = ?", adminRoleName).Row().Scan(&adminRoleID); err != nil {
			if err := db.Exec("INSERT INTO roles (name) VALUES (?)", adminRoleName).Error; err != nil {
				log.Fatalf("failed to insert admin role: %v", err)
			}
			if err := db.Raw("SELECT id FROM roles WHERE name = ?", adminRoleName).Row().Scan(&adminRoleID); err != nil {
				log.Fatalf("admin role not found after insert: %v", err)
			}
			fmt.Println("Seeded role:", adminRoleName)
		}

		for _, p := range permissions {
			var pid int64
			if err := db.Raw("SELECT id FROM permissions WHERE name = ?", p.Name).Row().Scan(&pid); err != nil {
				log.Fatalf("permission not found after insert %s: %v", p.Name, err)
			}

			var exists int
			if err := db.Raw("SELECT 1 FROM role_permissions WHERE role_id = ? AND permission_id = ?", adminRoleID, pid).Row().Scan(&exists); err == nil {
				continue
			}
			if err := db.Exec("INSERT INTO role_permissions (role_id, permission_id) VALUES (?, ?)", adminRoleID, pid).Error; err != nil {
				log.Fatalf("failed to grant permission %s to admin role: %v", p.Name, err)
			}
		}
		fmt.Println("Granted all permissions to role:", adminRoleName)

		hasher := auth.NewHasher(cfg.Security.PasswordScheme, cfg.Security.BcryptCost)
		digest, err := hasher.Hash("admin123")
		if err != nil {
			log.Fatalf("failed to hash admin password: %v", err)
		}

		adminUsername := "admin"
		var adminUserID int64
		if err := db.Raw("SELECT id FROM users WHERE username = ?", adminUsername).Row().Scan(&adminUserID); err != nil {
			if err := db.Exec("INSERT INTO users (username, email, password_hash, is_active) VALUES (?, ?, ?, true)", adminUsername, "admin@localhost", digest).Error; err != nil {
				log.Fatalf("failed to insert admin user: %v", err)
			}
			if err := db.Raw("SELECT id FROM users WHERE username = ?", adminUsername).Row().Scan(&adminUserID); err != nil {
				log.Fatalf("admin user not found after insert: %v", err)
			}
			fmt.Println("Seeded admin user:", adminUsername)
		} else {
			fmt.Println("admin user already exists; will ensure role assignment")
		}

		var exists int
		if err := db.Raw("SELECT 1 FROM user_roles WHERE user_id = ? AND role_id = ?", adminUserID, adminRoleID).Row().Scan(&exists); err != nil {
			if err := db.Exec("INSERT INTO user_roles (user_id, role_id) VALUES (?, ?)", adminUserID, adminRoleID).Error; err != nil {
				log.Fatalf("failed to assign admin role: %v", err)
			}
		}

		fmt.Println("Seeding complete")
	},
}
