// Package testutil builds an in-memory database with a small hotel
// restaurant for package tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/db"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/models"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/types"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var dbCounter atomic.Int64

// NewDB returns a migrated, private in-memory sqlite database.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:mayfair_%d?mode=memory&cache=shared", dbCounter.Add(1))
	gdb, err := gorm.Open(sqlite.Open(dsn), db.Config())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	// One connection keeps the shared in-memory database alive and
	// serializes writers the way sqlite expects.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}

// World is the fixture most tests start from: one food kitchen that is also
// the outlet orders are placed at, one bar, a table and a small menu.
type World struct {
	DB *gorm.DB

	Waiter    models.User
	Waiter2   models.User
	Chef      models.User
	Bartender models.User
	Manager   models.User
	Customer  models.User

	Kitchen models.Restaurant
	Bar     models.Restaurant
	Table   models.Table
	Table2  models.Table

	Food   models.MenuCategory
	Drinks models.MenuCategory

	Burger models.MenuItem
	Pasta  models.MenuItem
	Beer   models.MenuItem
}

func NewWorld(t testing.TB) *World {
	t.Helper()
	w := &World{DB: NewDB(t)}

	w.Waiter = CreateUser(t, w.DB, "Wendy Waiter", "wendy@mayfair.test", types.RoleWaiter)
	w.Waiter2 = CreateUser(t, w.DB, "Walt Waiter", "walt@mayfair.test", types.RoleWaiter)
	w.Chef = CreateUser(t, w.DB, "Carla Chef", "carla@mayfair.test", types.RoleChef)
	w.Bartender = CreateUser(t, w.DB, "Ben Bartender", "ben@mayfair.test", types.RoleBartender)
	w.Manager = CreateUser(t, w.DB, "Mona Manager", "mona@mayfair.test", types.RoleManager)
	w.Customer = CreateUser(t, w.DB, "Cody Customer", "cody@mayfair.test", types.RoleCustomer)

	w.Kitchen = CreateKitchen(t, w.DB, "Mayfair Restaurant", types.KitchenRestaurant)
	w.Bar = CreateKitchen(t, w.DB, "Mayfair Bar", types.KitchenBar)

	AssignStaff(t, w.DB, w.Kitchen.ID, w.Chef.ID, types.RoleChef)
	AssignStaff(t, w.DB, w.Bar.ID, w.Bartender.ID, types.RoleBartender)

	w.Table = CreateTable(t, w.DB, w.Kitchen.ID, "T5")
	w.Table2 = CreateTable(t, w.DB, w.Kitchen.ID, "T6")

	w.Food = CreateCategory(t, w.DB, w.Kitchen.ID, "Mains", string(types.KitchenRestaurant))
	w.Drinks = CreateCategory(t, w.DB, w.Kitchen.ID, "Drinks", string(types.KitchenBar))

	w.Burger = CreateMenuItem(t, w.DB, w.Food.ID, "Burger", "12.50")
	w.Pasta = CreateMenuItem(t, w.DB, w.Food.ID, "Pasta", "10.00")
	w.Beer = CreateMenuItem(t, w.DB, w.Drinks.ID, "Beer", "6.25")

	return w
}

func CreateUser(t testing.TB, gdb *gorm.DB, name, email string, role types.Role) models.User {
	t.Helper()
	u := models.User{Name: name, Email: email, Role: role, IsActive: true}
	must(t, gdb.Create(&u).Error)
	return u
}

func CreateKitchen(t testing.TB, gdb *gorm.DB, name string, kind types.KitchenType) models.Restaurant {
	t.Helper()
	r := models.Restaurant{Name: name, RestaurantType: kind, HasKitchen: true, IsActive: true}
	must(t, gdb.Create(&r).Error)
	return r
}

func AssignStaff(t testing.TB, gdb *gorm.DB, kitchenID, userID uint, role types.Role) {
	t.Helper()
	must(t, gdb.Create(&models.KitchenStaff{KitchenID: kitchenID, UserID: userID, Role: role}).Error)
}

func CreateTable(t testing.TB, gdb *gorm.DB, restaurantID uint, number string) models.Table {
	t.Helper()
	tbl := models.Table{RestaurantID: restaurantID, TableNumber: number, Capacity: 4}
	must(t, gdb.Create(&tbl).Error)
	return tbl
}

func CreateCategory(t testing.TB, gdb *gorm.DB, restaurantID uint, name, kitchenType string) models.MenuCategory {
	t.Helper()
	c := models.MenuCategory{RestaurantID: restaurantID, Name: name, KitchenType: kitchenType}
	must(t, gdb.Create(&c).Error)
	return c
}

func CreateMenuItem(t testing.TB, gdb *gorm.DB, categoryID uint, name, price string) models.MenuItem {
	t.Helper()
	m := models.MenuItem{CategoryID: categoryID, Name: name, Price: decimal.RequireFromString(price), IsAvailable: true}
	must(t, gdb.Create(&m).Error)
	return m
}

func must(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
}
