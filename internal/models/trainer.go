package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// TrainerAccount is a trainer's login identity. Login is the directory key.
type TrainerAccount struct {
	Login    string `json:"-"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TrainerDirectory maps trainer login to account while keeping registration
// order, which is the order student lookups scan trainers in.
type TrainerDirectory struct {
	order    []string
	accounts map[string]TrainerAccount
}

// NewTrainerDirectory returns an empty directory.
func NewTrainerDirectory() *TrainerDirectory {
	return &TrainerDirectory{accounts: make(map[string]TrainerAccount)}
}

// Len returns the number of registered trainers.
func (d *TrainerDirectory) Len() int {
	return len(d.order)
}

// Get returns the account for login.
func (d *TrainerDirectory) Get(login string) (TrainerAccount, bool) {
	acc, ok := d.accounts[login]
	return acc, ok
}

// Put inserts or replaces an account. New logins are appended to the order.
func (d *TrainerDirectory) Put(acc TrainerAccount) {
	if d.accounts == nil {
		d.accounts = make(map[string]TrainerAccount)
	}
	if _, exists := d.accounts[acc.Login]; !exists {
		d.order = append(d.order, acc.Login)
	}
	d.accounts[acc.Login] = acc
}

// Logins returns trainer logins in registration order.
func (d *TrainerDirectory) Logins() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Accounts returns accounts in registration order.
func (d *TrainerDirectory) Accounts() []TrainerAccount {
	out := make([]TrainerAccount, 0, len(d.order))
	for _, login := range d.order {
		out = append(out, d.accounts[login])
	}
	return out
}

// MarshalJSON writes the directory as a JSON object in registration order.
func (d *TrainerDirectory) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, login := range d.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(login)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(d.accounts[login])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keeping the key order of the document.
func (d *TrainerDirectory) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*d = *NewTrainerDirectory()
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("trainer directory: expected object, got %v", tok)
	}

	fresh := NewTrainerDirectory()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		login, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("trainer directory: unexpected key %v", keyTok)
		}
		var acc TrainerAccount
		if err := dec.Decode(&acc); err != nil {
			return fmt.Errorf("trainer directory: account %q: %w", login, err)
		}
		acc.Login = login
		fresh.Put(acc)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*d = *fresh
	return nil
}
