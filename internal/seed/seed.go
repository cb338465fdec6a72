// Package seed loads the static reference data the shop starts with:
// brands, products and users with their initial carts.
package seed

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"

	"ShadesStore/internal/auth"
	"ShadesStore/internal/cart"
	"ShadesStore/internal/catalog"
)

const (
	brandsFile   = "brands.json"
	productsFile = "products.json"
	usersFile    = "users.json"
)

//go:embed data/*.json
var embedded embed.FS

type Name struct {
	Title string `json:"title"`
	First string `json:"first"`
	Last  string `json:"last"`
}

type Login struct {
	UUID     string `json:"uuid"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// User mirrors one record of users.json. Fields the shop does not use are
// ignored on decode.
type User struct {
	Gender string      `json:"gender"`
	Name   Name        `json:"name"`
	Email  string      `json:"email"`
	Login  Login       `json:"login"`
	Cart   []cart.Line `json:"cart"`
}

type Data struct {
	Brands   []catalog.Brand
	Products []catalog.Product
	Users    []User
}

// Default returns the data bundled into the binary.
func Default() fs.FS {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		panic(err)
	}
	return sub
}

// Source returns the directory dir, or the bundled data when dir is empty.
func Source(dir string) fs.FS {
	if dir == "" {
		return Default()
	}
	return os.DirFS(dir)
}

// Load reads brands.json, products.json and users.json from fsys.
func Load(fsys fs.FS) (Data, error) {
	var d Data
	if err := readJSON(fsys, brandsFile, &d.Brands); err != nil {
		return Data{}, err
	}
	if err := readJSON(fsys, productsFile, &d.Products); err != nil {
		return Data{}, err
	}
	if err := readJSON(fsys, usersFile, &d.Users); err != nil {
		return Data{}, err
	}
	return d, nil
}

// LoadUsers reads only users.json, for when the catalog comes from elsewhere.
func LoadUsers(fsys fs.FS) ([]User, error) {
	var users []User
	if err := readJSON(fsys, usersFile, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (d Data) Credentials() []auth.Credential {
	return Credentials(d.Users)
}

func (d Data) Carts() map[string][]cart.Line {
	return Carts(d.Users)
}

func Credentials(users []User) []auth.Credential {
	out := make([]auth.Credential, 0, len(users))
	for _, u := range users {
		out = append(out, auth.Credential{
			ID:       u.Login.UUID,
			Username: u.Login.Username,
			Password: u.Login.Password,
		})
	}
	return out
}

// Carts keys each user's initial cart by username. Lines with a quantity
// below 1 are given quantity 1, and repeated product IDs keep the first line.
func Carts(users []User) map[string][]cart.Line {
	out := make(map[string][]cart.Line, len(users))
	for _, u := range users {
		if _, dup := out[u.Login.Username]; dup {
			continue
		}

		seen := make(map[string]struct{}, len(u.Cart))
		lines := make([]cart.Line, 0, len(u.Cart))
		for _, l := range u.Cart {
			if _, ok := seen[l.ID]; ok {
				continue
			}
			seen[l.ID] = struct{}{}
			if l.Quantity < 1 {
				l.Quantity = 1
			}
			lines = append(lines, l)
		}
		out[u.Login.Username] = lines
	}
	return out
}

func readJSON(fsys fs.FS, name string, dst any) error {
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}
