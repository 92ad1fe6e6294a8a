package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tonyadjei/devcamper-api/internal/auth"
	"github.com/tonyadjei/devcamper-api/internal/bootcamps"
	"github.com/tonyadjei/devcamper-api/internal/config"
	"github.com/tonyadjei/devcamper-api/internal/courses"
	"github.com/tonyadjei/devcamper-api/internal/db"
	"github.com/tonyadjei/devcamper-api/internal/users"
	"github.com/tonyadjei/devcamper-api/internal/utils"
)

type seedBootcamp struct {
	Name        string
	Description string
	Website     string
	Address     string
	Careers     []string
	Housing     bool
}

type seedCourse struct {
	Title        string
	Description  string
	Weeks        string
	Tuition      float64
	MinimumSkill string
	Bootcamp     string // bootcamp slug
}

type seedUser struct {
	Name  string
	Email string
	Role  string
}

func main() {
	destroy := flag.Bool("destroy", false, "wipe the seeded collections instead of seeding")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, cols, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatal(err)
	}
	defer client.Disconnect(context.Background())

	if *destroy {
		if err := destroyAll(ctx, cols); err != nil {
			log.Fatalf("destroy error: %v", err)
		}
		log.Println("data destroyed")
		return
	}

	if err := db.EnsureIndexes(ctx, cols); err != nil {
		log.Fatal(err)
	}

	owner, err := seedUsers(ctx, cols)
	if err != nil {
		log.Fatalf("seed users error: %v", err)
	}

	bootcampIDs, err := seedBootcamps(ctx, cols, owner)
	if err != nil {
		log.Fatalf("seed bootcamps error: %v", err)
	}

	if err := seedCourses(ctx, cols, owner, bootcampIDs); err != nil {
		log.Fatalf("seed courses error: %v", err)
	}

	log.Println("seed completed")
}

func destroyAll(ctx context.Context, cols *db.Collections) error {
	if _, err := cols.Courses.DeleteMany(ctx, bson.M{}); err != nil {
		return err
	}
	if _, err := cols.Reviews.DeleteMany(ctx, bson.M{}); err != nil {
		return err
	}
	if _, err := cols.Bootcamps.DeleteMany(ctx, bson.M{}); err != nil {
		return err
	}
	if _, err := cols.Users.DeleteMany(ctx, bson.M{}); err != nil {
		return err
	}
	return nil
}

// seedUsers upserts the fixture publisher plus an admin when ADMIN_EMAIL and
// ADMIN_PASSWORD are set. Returns the publisher's id for bootcamp ownership.
func seedUsers(ctx context.Context, cols *db.Collections) (string, error) {
	fixtures := []seedUser{
		{Name: "John Doe", Email: "john@gmail.com", Role: users.RolePublisher},
		{Name: "Kevin Smith", Email: "kevin@gmail.com", Role: users.RoleUser},
	}

	password := os.Getenv("SEED_USER_PASSWORD")
	if password == "" {
		password = "123456"
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", err
	}

	var publisherID string
	for _, u := range fixtures {
		id, err := upsertUser(ctx, cols, u.Name, u.Email, u.Role, hash)
		if err != nil {
			return "", err
		}
		if u.Role == users.RolePublisher && publisherID == "" {
			publisherID = id
		}
	}

	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminEmail != "" && adminPassword != "" {
		adminHash, err := auth.HashPassword(adminPassword)
		if err != nil {
			return "", err
		}
		if _, err := upsertUser(ctx, cols, "Admin", adminEmail, users.RoleAdmin, adminHash); err != nil {
			return "", err
		}
	} else {
		log.Println("seed admin: ADMIN_EMAIL or ADMIN_PASSWORD missing, skipping")
	}

	return publisherID, nil
}

func upsertUser(ctx context.Context, cols *db.Collections, name, email, role, hash string) (string, error) {
	filter := bson.M{"email": email}
	update := bson.M{"$setOnInsert": users.User{
		ID:           primitive.NewObjectID().Hex(),
		Name:         name,
		Email:        email,
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}}
	if _, err := cols.Users.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return "", err
	}

	var stored users.User
	if err := cols.Users.FindOne(ctx, filter).Decode(&stored); err != nil {
		return "", err
	}
	return stored.ID, nil
}

func seedBootcamps(ctx context.Context, cols *db.Collections, owner string) (map[string]string, error) {
	fixtures := []seedBootcamp{
		{
			Name:        "Devworks Bootcamp",
			Description: "Devworks is a full stack JavaScript Bootcamp located in the heart of Boston that focuses on the technologies you need to get a high paying job as a web developer",
			Website:     "https://devworks.com",
			Address:     "233 Bay State Rd Boston MA 02215",
			Careers:     []string{"Web Development", "UI/UX", "Business"},
			Housing:     true,
		},
		{
			Name:        "ModernTech Bootcamp",
			Description: "ModernTech has one goal, and that is to make you a rockstar developer and/or designer with a six figure salary",
			Website:     "https://moderntech.com",
			Address:     "220 Pawtucket St Lowell MA 01854",
			Careers:     []string{"Web Development", "UI/UX", "Mobile Development"},
		},
		{
			Name:        "Codemasters",
			Description: "Is coding your passion? Codemasters will give you the skills and the tools to become the best developer possible",
			Website:     "https://codemasters.com",
			Address:     "85 South Prospect St Burlington VT 05405",
			Careers:     []string{"Web Development", "Data Science", "Business"},
		},
	}

	ids := make(map[string]string, len(fixtures))
	for _, b := range fixtures {
		slug := utils.Slugify(b.Name)
		filter := bson.M{"slug": slug}
		update := bson.M{"$setOnInsert": bootcamps.Bootcamp{
			ID:          primitive.NewObjectID().Hex(),
			Name:        b.Name,
			Slug:        slug,
			Description: b.Description,
			Website:     b.Website,
			Address:     b.Address,
			Careers:     b.Careers,
			Photo:       bootcamps.DefaultPhoto,
			Housing:     b.Housing,
			CreatedAt:   time.Now().UTC(),
			User:        owner,
		}}
		if _, err := cols.Bootcamps.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
			return nil, err
		}

		var stored bootcamps.Bootcamp
		if err := cols.Bootcamps.FindOne(ctx, filter).Decode(&stored); err != nil {
			return nil, err
		}
		ids[slug] = stored.ID
	}
	return ids, nil
}

func seedCourses(ctx context.Context, cols *db.Collections, owner string, bootcampIDs map[string]string) error {
	fixtures := []seedCourse{
		{
			Title:        "Front End Web Development",
			Description:  "This course will provide you with all of the essentials to become a successful frontend web developer",
			Weeks:        "8",
			Tuition:      8000,
			MinimumSkill: "beginner",
			Bootcamp:     "devworks-bootcamp",
		},
		{
			Title:        "Full Stack Web Development",
			Description:  "In this course you will learn full stack web development, first learning all about the frontend, then the backend",
			Weeks:        "12",
			Tuition:      10000,
			MinimumSkill: "intermediate",
			Bootcamp:     "devworks-bootcamp",
		},
		{
			Title:        "UI/UX",
			Description:  "In this course you will learn to create beautiful interfaces. It is a mix of design and development",
			Weeks:        "12",
			Tuition:      10000,
			MinimumSkill: "intermediate",
			Bootcamp:     "moderntech-bootcamp",
		},
		{
			Title:        "Data Science Program",
			Description:  "In this course you will learn Python for data science, machine learning and big data tools",
			Weeks:        "10",
			Tuition:      9000,
			MinimumSkill: "intermediate",
			Bootcamp:     "codemasters",
		},
	}

	for _, c := range fixtures {
		bootcampID, ok := bootcampIDs[c.Bootcamp]
		if !ok {
			continue
		}
		filter := bson.M{"title": c.Title, "bootcamp": bootcampID}
		update := bson.M{"$setOnInsert": courses.Course{
			ID:           primitive.NewObjectID().Hex(),
			Title:        c.Title,
			Description:  c.Description,
			Weeks:        c.Weeks,
			Tuition:      c.Tuition,
			MinimumSkill: c.MinimumSkill,
			CreatedAt:    time.Now().UTC(),
			Bootcamp:     bootcampID,
			User:         owner,
		}}
		if _, err := cols.Courses.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
			return err
		}
	}
	return nil
}
