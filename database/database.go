package database

import (
	"fmt"
	"log"

	"officeexpense/config"
	"officeexpense/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Init 初始化数据库连接
func Init(cfg *config.Config) error {
	dialector, err := buildDialector(&cfg.Database)
	if err != nil {
		return err
	}

	DB, err = gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		return fmt.Errorf("连接数据库失败: %w", err)
	}

	// 获取底层 *sql.DB 连接池配置
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	// 设置连接池参数
	sqlDB.SetMaxIdleConns(10)  // 最大空闲连接数
	sqlDB.SetMaxOpenConns(100) // 最大打开连接数

	// 自动迁移数据库表
	if err := DB.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.WalletEntry{},
		&models.Expense{},
	); err != nil {
		return err
	}

	seedCategories()
	if err := seedAdmin(cfg); err != nil {
		return err
	}

	log.Println("数据库初始化成功")
	return nil
}

// buildDialector 根据配置选择数据库驱动（mysql 默认，postgres 可选）
func buildDialector(db *config.DatabaseConfig) (gorm.Dialector, error) {
	switch db.Driver {
	case "", "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=%s&parseTime=True&loc=Local",
			db.Username, db.Password, db.Host, db.Port, db.DBName, db.Charset)
		return mysql.Open(dsn), nil
	case "postgres":
		sslMode := db.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			db.Host, db.Port, db.Username, db.Password, db.DBName, sslMode)
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("不支持的数据库驱动: %s", db.Driver)
	}
}

// seedCategories 初始化默认费用类别（仅当表为空时）
func seedCategories() {
	var count int64
	DB.Model(&models.Category{}).Count(&count)
	if count > 0 {
		return
	}

	defaults := []models.Category{
		{Name: "办公用品", Color: "#ef4444", IsActive: true},
		{Name: "差旅", Color: "#3b82f6", IsActive: true},
		{Name: "餐饮", Color: "#a855f7", IsActive: true},
		{Name: "软件服务", Color: "#ec4899", IsActive: true},
		{Name: "水电物业", Color: "#10b981", IsActive: true},
		{Name: "设备", Color: "#f59e0b", IsActive: true},
		{Name: "维修保养", Color: "#14b8a6", IsActive: true},
		{Name: "其他", Color: "#64748b", IsActive: true},
	}
	_ = DB.Create(&defaults).Error
}

// seedAdmin 初始化引导管理员（仅当用户表为空时）
// SSO 不会自动建号，第一个管理员需通过本地密码登录来预创建其他用户
func seedAdmin(cfg *config.Config) error {
	var count int64
	DB.Model(&models.User{}).Count(&count)
	if count > 0 {
		return nil
	}
	if cfg.Admin.Email == "" || cfg.Admin.Password == "" {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.Admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("生成管理员密码失败: %w", err)
	}
	name := cfg.Admin.Name
	if name == "" {
		name = "Administrator"
	}
	admin := models.User{
		Email:    cfg.Admin.Email,
		Name:     name,
		Role:     models.RoleAdmin,
		Password: string(hashed),
		IsActive: true,
	}
	if err := DB.Create(&admin).Error; err != nil {
		return fmt.Errorf("创建引导管理员失败: %w", err)
	}
	log.Printf("已创建引导管理员: %s", admin.Email)
	return nil
}

// GetDB 获取数据库连接
func GetDB() *gorm.DB {
	return DB
}
