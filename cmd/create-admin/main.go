package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/hmicael/email-api/internal/auth"
	"github.com/hmicael/email-api/internal/config"
	"github.com/hmicael/email-api/internal/domain"
	gormstore "github.com/hmicael/email-api/internal/storage/gorm"
)

// create-admin 在数据库中创建一个具备 ROLE_ADMIN 角色的管理账号。
func main() {
	email := flag.String("email", "", "管理账号邮箱")
	password := flag.String("password", "", "明文密码（至少 8 位，字母加数字或含特殊字符）")
	name := flag.String("name", "", "姓（可选）")
	firstname := flag.String("firstname", "", "名（可选）")
	flag.Parse()

	if *email == "" || *password == "" {
		fmt.Println("用法:")
		fmt.Println("  create-admin -email=admin@example.com -password='S3cret!pass' [-name=Doe] [-firstname=John]")
		fmt.Println("数据库连接通过 EMAILAPI_DATABASE_TYPE / EMAILAPI_DATABASE_DSN 环境变量提供。")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("错误: 无法加载配置: %v\n", err)
		os.Exit(1)
	}

	if cfg.Database.Type == "" || cfg.Database.DSN == "" {
		fmt.Println("错误: 未配置数据库，请设置 EMAILAPI_DATABASE_TYPE 和 EMAILAPI_DATABASE_DSN")
		os.Exit(1)
	}

	user := &domain.User{
		Email:     strings.ToLower(strings.TrimSpace(*email)),
		Roles:     []string{domain.RoleAdmin},
		Name:      *name,
		Firstname: *firstname,
	}

	if err := user.Validate(); err != nil {
		fmt.Printf("错误: %v\n", err)
		os.Exit(1)
	}
	if !domain.StrongPassword(*password) {
		fmt.Println("错误: 密码强度不足，至少 8 位并包含字母和数字的组合或特殊字符")
		os.Exit(1)
	}

	hashed, err := auth.HashPassword(*password)
	if err != nil {
		fmt.Printf("错误: 密码哈希失败: %v\n", err)
		os.Exit(1)
	}
	user.Password = hashed

	store, err := gormstore.NewStore(
		cfg.Database.Type,
		cfg.Database.DSN,
		cfg.Database.MaxOpenConns,
		cfg.Database.MaxIdleConns,
		cfg.Database.ConnMaxLifetime,
	)
	if err != nil {
		fmt.Printf("错误: 无法连接数据库: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := store.SaveUser(user); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			fmt.Printf("错误: 邮箱 %s 已被占用\n", *email)
		} else {
			fmt.Printf("错误: 创建账号失败: %v\n", err)
		}
		os.Exit(1)
	}

	fmt.Println("✓ 管理账号创建成功!")
	fmt.Printf("  ID:    %d\n", user.ID)
	fmt.Printf("  Email: %s\n", user.Email)
	fmt.Printf("  Roles: %v\n", user.EffectiveRoles())
}
