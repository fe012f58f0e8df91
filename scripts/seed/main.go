// Command seed provisions a development database with a teacher account, a
// demo class and roster so the API can be exercised immediately after boot.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/attendease/attendease-api/internal/models"
	"github.com/attendease/attendease-api/internal/repository"
	"github.com/attendease/attendease-api/pkg/config"
	"github.com/attendease/attendease-api/pkg/database"
)

func main() {
	email := flag.String("email", "teacher@example.com", "teacher login email")
	password := flag.String("password", "changeme123", "teacher login password")
	fullName := flag.String("name", "Demo Teacher", "teacher display name")
	className := flag.String("class", "Homeroom 7A", "demo class name")
	rosterSize := flag.Int("students", 8, "number of demo students")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	teacherID := uuid.NewString()
	now := time.Now().UTC()
	const insertUser = `INSERT INTO users (id, email, password_hash, full_name, role, active, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, true, $6, $6)
        ON CONFLICT (email) DO UPDATE SET password_hash = EXCLUDED.password_hash
        RETURNING id`
	if err := db.QueryRowxContext(ctx, insertUser, teacherID, *email, string(hash), *fullName, models.RoleTeacher, now).Scan(&teacherID); err != nil {
		log.Fatalf("seed teacher account: %v", err)
	}

	classRepo := repository.NewClassRepository(db)
	class := &models.Class{
		Name:        *className,
		Description: "Seeded demo class",
		TeacherID:   teacherID,
	}
	if err := classRepo.Create(ctx, class); err != nil {
		log.Fatalf("seed class: %v", err)
	}

	studentRepo := repository.NewStudentRepository(db)
	for i := 1; i <= *rosterSize; i++ {
		student := &models.Student{
			ClassID: class.ID,
			Name:    fmt.Sprintf("Student %02d", i),
			Email:   fmt.Sprintf("student%02d@example.com", i),
		}
		if err := studentRepo.Create(ctx, student); err != nil {
			log.Fatalf("seed student %d: %v", i, err)
		}
	}

	log.Printf("seeded teacher %s (id=%s) with class %q (%d students)", *email, teacherID, class.Name, *rosterSize)
}
