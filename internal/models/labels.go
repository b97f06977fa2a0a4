package models

// Label is the Indonesian record name used in user-facing messages.
func (Client) Label() string          { return "Klien" }
func (Lead) Label() string            { return "Prospek" }
func (Project) Label() string         { return "Proyek" }
func (TeamMember) Label() string      { return "Freelancer" }
func (Card) Label() string            { return "Kartu" }
func (FinancialPocket) Label() string { return "Kantong" }
func (Contract) Label() string        { return "Kontrak" }
func (SOP) Label() string             { return "SOP" }
