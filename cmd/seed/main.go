// Package main seeds the database with demo stores, users, claims, a
// reviewer account, and an API key for local development.
package main

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"bastion/internal/config"
	"bastion/internal/models"
	"bastion/internal/repositories"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var storeNames = []string{
	"Amazon", "Best Buy", "Target", "Walmart", "Costco",
	"Canadian Tire", "Loblaws", "Home Depot", "Shoppers Drug Mart",
}

type catalogItem struct {
	name     string
	category string
	price    float64
}

var riskyItems = []catalogItem{
	{"iPhone 15 Pro", "electronics", 999.99},
	{"MacBook Air", "electronics", 1099.99},
	{"PlayStation 5", "gaming", 499.99},
	{"AirPods Pro", "electronics", 249.99},
	{"Gold Necklace", "jewelry", 459.99},
	{"Designer Hoodie", "designer", 189.99},
	{"Apple Watch", "electronics", 399.99},
	{"Gaming Laptop", "gaming", 1299.99},
}

var normalItems = []catalogItem{
	{"Basic T-Shirt", "clothing", 19.99},
	{"Jeans", "clothing", 49.99},
	{"Coffee Maker", "home", 129.99},
	{"Book", "books", 15.99},
	{"Running Shoes", "sports", 129.99},
	{"Water Bottle", "home", 18.99},
	{"Sunglasses", "accessories", 79.99},
	{"Face Cream", "beauty", 34.99},
}

func main() {
	config.LoadEnv()

	if err := repositories.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rng := rand.New(rand.NewSource(int64(config.GetIntEnv("SEED", 42))))
	userCount := config.GetIntEnv("SEED_USERS", 20)
	claimCount := config.GetIntEnv("SEED_CLAIMS", 365)

	stores := seedStores()
	users := seedUsers(rng, userCount)
	seedClaims(rng, users, stores, claimCount)
	seedAdmin()
	seedAPIKey()

	log.Printf("Seeded %d stores, %d users, %d claims", len(stores), len(users), claimCount)
}

func seedStores() []models.Store {
	stores := make([]models.Store, 0, len(storeNames))
	for _, name := range storeNames {
		store := models.Store{Name: name}
		if err := repositories.DB.Where("name = ?", name).FirstOrCreate(&store).Error; err != nil {
			log.Fatalf("Failed to seed store %s: %v", name, err)
		}
		stores = append(stores, store)
	}
	return stores
}

// seedUsers creates users in a 60/25/15 low/medium/high risk split.
func seedUsers(rng *rand.Rand, count int) []models.User {
	users := make([]models.User, 0, count)
	for i := 1; i <= count; i++ {
		var name string
		var score int
		switch {
		case i <= count*60/100:
			name = fmt.Sprintf("Normal User %d", i)
			score = 15 + rng.Intn(31)
		case i <= count*85/100:
			name = fmt.Sprintf("Medium Risk User %d", i)
			score = 46 + rng.Intn(25)
		default:
			name = fmt.Sprintf("High Risk User %d", i)
			score = 71 + rng.Intn(20)
		}

		user := models.User{
			KYCEmail:  fmt.Sprintf("user%d@example.com", i),
			FullName:  name,
			DOB:       fmt.Sprintf("198%d-%02d-%02d", rng.Intn(10), 1+rng.Intn(12), 1+rng.Intn(28)),
			RiskScore: score,
			IsFlagged: score > 70,
		}
		if err := repositories.DB.Where("kyc_email = ?", user.KYCEmail).FirstOrCreate(&user).Error; err != nil {
			log.Fatalf("Failed to seed user %s: %v", user.KYCEmail, err)
		}
		users = append(users, user)
	}
	return users
}

func seedClaims(rng *rand.Rand, users []models.User, stores []models.Store, count int) {
	statuses := []models.ClaimStatus{
		models.ClaimPending, models.ClaimApproved, models.ClaimApproved, models.ClaimDenied,
	}

	for i := 0; i < count; i++ {
		user := users[rng.Intn(len(users))]
		store := stores[rng.Intn(len(stores))]

		pool := normalItems
		if user.RiskScore > 45 && rng.Intn(100) < 60 {
			pool = riskyItems
		}

		items := make(models.ItemList, 0, 1+rng.Intn(3))
		for n := 0; n < cap(items); n++ {
			pick := pool[rng.Intn(len(pool))]
			items = append(items, models.ItemData{
				ItemName: pick.name,
				Category: pick.category,
				Price:    pick.price,
				Quantity: 1 + rng.Intn(2),
			})
		}

		account := models.StoreAccount{
			UserID:       user.ID,
			StoreID:      store.ID,
			EmailAtStore: fmt.Sprintf("%s+%s@example.com", user.KYCEmail[:len(user.KYCEmail)-12], store.ID[:4]),
		}
		err := repositories.DB.
			Where("user_id = ? AND store_id = ?", user.ID, store.ID).
			FirstOrCreate(&account).Error
		if err != nil {
			log.Fatalf("Failed to seed store account: %v", err)
		}

		claim := models.Claim{
			StoreAccountID: account.ID,
			Status:         statuses[rng.Intn(len(statuses))],
			ClaimData:      items,
			RiskScore:      user.RiskScore + rng.Intn(15) - 7,
			IsFlagged:      user.RiskScore > 70 && rng.Intn(100) < 50,
			CreatedAt:      time.Now().AddDate(0, 0, -rng.Intn(365)),
		}
		if err := repositories.DB.Create(&claim).Error; err != nil {
			log.Fatalf("Failed to seed claim: %v", err)
		}
	}
}

func seedAdmin() {
	email := config.GetEnv("ADMIN_EMAIL", "admin@bastion.local")
	password := config.GetEnv("ADMIN_PASSWORD", "changeme-now")

	var existing models.Admin
	if err := repositories.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		log.Println("Admin account already exists")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash admin password: %v", err)
	}

	admin := models.Admin{Email: email, Password: string(hashed), FullName: "Bastion Admin"}
	if err := repositories.DB.Create(&admin).Error; err != nil {
		log.Fatalf("Failed to seed admin: %v", err)
	}
	log.Printf("Created admin account %s", email)
}

func seedAPIKey() {
	key := config.GetEnv("SEED_API_KEY", "")
	if key == "" {
		key = uuid.NewString()
	}

	record := models.APIKey{Key: key, Name: "local-dev"}
	err := repositories.DB.Where("key = ?", key).FirstOrCreate(&record).Error
	if err != nil {
		log.Fatalf("Failed to seed API key: %v", err)
	}
	log.Printf("API key: %s", record.Key)
}
