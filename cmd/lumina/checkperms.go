package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lumina/internal/config"
	internaldb "lumina/internal/db"
	"lumina/internal/db/repository"
)

var checkPermsUser string

var checkPermsCmd = &cobra.Command{
	Use:   "check-perms",
	Short: "Dump the permission store for inspection",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runCheckPerms(cmd.Context())
	},
}

func init() {
	checkPermsCmd.Flags().StringVar(&checkPermsUser, "user", "", "only show grants for users whose email or name contains this string")
}

func runCheckPerms(ctx context.Context) error {
	_ = config.LoadDotEnv(envFile)
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}

	db, err := internaldb.OpenSQLite(cfg.PermDBPath, "read", 1)
	if err != nil {
		return fmt.Errorf("open permission store: %w", err)
	}
	defer db.Close()

	projects := repository.NewProjectRepo(db)
	roles := repository.NewRoleRepo(db)
	perms := repository.NewPermissionRepo(db)
	users := repository.NewUserRepo(db)
	grants := repository.NewGrantRepo(db)

	projectList, err := projects.List(ctx)
	if err != nil {
		return err
	}
	fmt.Println("--- PROJECTS ---")
	for _, p := range projectList {
		fmt.Printf("%s  %s\n", p.ID, p.Name)
	}

	roleList, err := roles.List(ctx)
	if err != nil {
		return err
	}
	fmt.Println("\n--- ROLES ---")
	for _, r := range roleList {
		fmt.Println(r)
	}

	fmt.Println("\n--- PERMISSIONS ---")
	for _, p := range projectList {
		for _, r := range roleList {
			tps, err := perms.ListForRole(ctx, p.Name, r)
			if err != nil {
				return err
			}
			for _, tp := range tps {
				fmt.Printf("%s  %s  %s  read=%t readSelf=%t\n", p.Name, r, tp.Table, tp.CanRead, tp.CanReadSelf)
			}
		}
	}

	userList, err := users.List(ctx)
	if err != nil {
		return err
	}
	fmt.Println("\n--- USER ROLES ---")
	needle := strings.ToLower(checkPermsUser)
	for _, u := range userList {
		if needle != "" &&
			!strings.Contains(strings.ToLower(u.Email), needle) &&
			!strings.Contains(strings.ToLower(u.Name), needle) {
			continue
		}
		userGrants, err := grants.ProjectsFor(ctx, u.Email)
		if err != nil {
			return err
		}
		for _, g := range userGrants {
			fmt.Printf("%s  %s  %s  %s\n", u.Email, u.Name, g.Project, g.Role)
		}
	}

	return nil
}
