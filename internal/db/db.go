package db

import (
	"log"
	"os"

	"memehub/internal/models"
	"memehub/internal/utils"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		// Fallback for local dev if not set
		dsn = "host=localhost user=postgres password=postgres dbname=memehub port=5432 sslmode=disable"
	}

	var err error
	// TranslateError 让唯一约束冲突以 gorm.ErrDuplicatedKey 暴露，
	// 重复举报等唯一性检查依赖这一点，而不是先查后插
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Println("Database connection established")

	if err := Migrate(DB); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed")

	seedAdmin()
}

// Migrate 建表。测试里对内存库复用。
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Tag{},
		&models.PostTag{},
		&models.PostLike{},
		&models.Comment{},
		&models.CommentLike{},
		&models.Report{},
		&models.UserReport{},
		&models.Template{},
	)
}

// seedAdmin 首次启动时从环境变量创建管理员账号
func seedAdmin() {
	var count int64
	DB.Model(&models.User{}).Where("role = ?", "admin").Count(&count)
	if count > 0 {
		return
	}

	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Println("No admin account and no ADMIN_EMAIL/ADMIN_PASSWORD set, skipping seed")
		return
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		log.Printf("Failed to hash admin password: %v", err)
		return
	}

	admin := models.User{
		Username:    "admin",
		Email:       email,
		Password:    hash,
		Role:        "admin",
		AvatarColor: utils.RandomAvatarColor(),
		Settings:    models.DefaultSettings(),
	}
	if err := DB.Create(&admin).Error; err != nil {
		log.Printf("Failed to seed admin user: %v", err)
		return
	}
	log.Println("Seeded initial admin user")
}
