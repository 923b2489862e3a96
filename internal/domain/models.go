// Package domain defines the persistence models for deal sources, cached
// offers, categories, users, and per-user preferences. These types are
// mapped with GORM onto the legacy schema (Spanish table and column names)
// so the Go backend runs against the same database as the original service.
package domain

import (
	"time"
)

// Roles assignable to a user.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Supported source response kinds. Only structured JSON is implemented;
// HTML sources are configuration placeholders and contribute no offers.
const (
	ResponseKindJSON = "JSON"
	ResponseKindHTML = "HTML"
)

// AllCategoriesName is the sentinel catalog entry that, when selected,
// disables category filtering entirely.
const AllCategoriesName = "TODO"

// Source describes one external deal feed: where to fetch it, how to fetch
// it, and how to project its raw items into offers.
//
// Fields:
//   - Method: "GET" or "POST"; POST sends BodyTemplate as the request body.
//   - Headers: JSON object of request headers, stored as text.
//   - FieldMap: the declarative mapping spec (JSON text) interpreted by the
//     scraper package.
//   - ImageStripPattern: optional regex removed from mapped image URLs
//     (e.g. Amazon CDN resizing suffixes). Empty means no post-processing.
type Source struct {
	ID                uint   `json:"id"                  gorm:"column:id;primaryKey;autoIncrement"`
	Name              string `json:"nombre"              gorm:"column:nombre;type:varchar(128);not null;uniqueIndex"`
	URL               string `json:"url"                 gorm:"column:url;type:text;not null"`
	Method            string `json:"metodo"              gorm:"column:metodo;type:varchar(8);not null;default:'GET'"`
	ResponseKind      string `json:"tipo_respuesta"      gorm:"column:tipo_respuesta;type:varchar(8);not null;default:'JSON'"`
	Headers           string `json:"-"                   gorm:"column:headers;type:text"`
	BodyTemplate      string `json:"-"                   gorm:"column:body_config;type:text"`
	FieldMap          string `json:"-"                   gorm:"column:mapeo_campos;type:text"`
	ImageStripPattern string `json:"-"                   gorm:"column:imagen_limpieza;type:text"`
}

// TableName returns the database table name for Source.
func (Source) TableName() string { return "Fuentes" }

// Offer is a normalized deal record derived from one source item. Rows are
// cache entries: they are upserted per fetch, keyed by the Link natural key,
// and considered fresh while CapturedAt is within the configured TTL.
//
// RegularPrice is nullable; when absent the discount percentage cannot be
// derived and is whatever the source supplied (possibly zero).
type Offer struct {
	ID              uint     `json:"id"                   gorm:"column:id;primaryKey;autoIncrement"`
	SourceID        uint     `json:"fuente_id"            gorm:"column:fuente_id;not null;index:idx_ofertas_fuente_fecha,priority:1"`
	ExternalID      string   `json:"-"                    gorm:"column:id_externo;type:varchar(64)"`
	Title           string   `json:"titulo"               gorm:"column:titulo;type:text;not null"`
	Description     *string  `json:"descripcion,omitempty" gorm:"column:descripcion;type:text"`
	RegularPrice    *float64 `json:"precio_normal,omitempty" gorm:"column:precio_normal"`
	SalePrice       float64  `json:"precio_oferta"        gorm:"column:precio_oferta;not null"`
	DiscountPercent int      `json:"porcentaje_descuento" gorm:"column:porcentaje_descuento"`
	Image           *string  `json:"imagen,omitempty"     gorm:"column:imagen;type:text"`
	Link            string   `json:"enlace"               gorm:"column:enlace;type:text;not null;uniqueIndex"`
	Category        *string  `json:"categoria,omitempty"  gorm:"column:categoria;type:text"`

	CapturedAt time.Time `json:"fecha_captura" gorm:"column:fecha_captura;index:idx_ofertas_fuente_fecha,priority:2"`
}

// TableName returns the database table name for Offer.
func (Offer) TableName() string { return "Ofertas" }

// Savings returns the absolute amount saved versus the regular price,
// or 0 when no regular price is known.
func (o Offer) Savings() float64 {
	if o.RegularPrice == nil || *o.RegularPrice <= o.SalePrice {
		return 0
	}
	return *o.RegularPrice - o.SalePrice
}

// Category is a catalog entry offers are matched against. ParentID links
// subcategories to their parent; top-level categories have a nil parent.
type Category struct {
	ID       uint    `json:"id"                 gorm:"column:id;primaryKey;autoIncrement"`
	Name     string  `json:"nombre"             gorm:"column:nombre;type:varchar(64);not null;uniqueIndex"`
	Emoji    *string `json:"emoji,omitempty"    gorm:"column:emoji;type:varchar(8)"`
	ParentID *uint   `json:"padre_id,omitempty" gorm:"column:padre_id"`
}

// TableName returns the database table name for Category.
func (Category) TableName() string { return "Categorias" }

// IsAllCategories reports whether this is the sentinel "select everything"
// catalog entry.
func (c Category) IsAllCategories() bool { return c.Name == AllCategoriesName }

// User is a Telegram subscriber. TelegramID is the natural primary key.
type User struct {
	TelegramID           int64     `json:"telegram_id"  gorm:"column:telegram_id;primaryKey"`
	Name                 string    `json:"nombre"       gorm:"column:nombre;type:varchar(128)"`
	Username             *string   `json:"username,omitempty" gorm:"column:username;type:varchar(64)"`
	IsBot                bool      `json:"is_bot"       gorm:"column:is_bot"`
	Role                 string    `json:"rol"          gorm:"column:rol;type:varchar(16);not null;default:'user'"`
	SetupComplete        bool      `json:"configuracion_inicial_completa" gorm:"column:configuracion_inicial_completa;not null;default:false"`
	LastSummaryMessageID *int      `json:"-"            gorm:"column:last_summary_message_id"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "Usuarios" }

// Preferences holds a user's offer filters. MaxPrice uses 0 as "no upper
// bound"; legacy sentinel values are normalized on read and write by the
// preferences service.
type Preferences struct {
	UserTelegramID int64   `json:"usuario_telegram_id"      gorm:"column:usuario_telegram_id;primaryKey"`
	MinDiscount    int     `json:"porcentaje_descuento_min" gorm:"column:porcentaje_descuento_min;not null;default:50"`
	MinPrice       float64 `json:"precio_min"               gorm:"column:precio_min;not null;default:0"`
	MaxPrice       float64 `json:"precio_max"               gorm:"column:precio_max;not null;default:0"`
}

// TableName returns the database table name for Preferences.
func (Preferences) TableName() string { return "PreferenciasUsuario" }

// UserSource links a user to a selected source.
type UserSource struct {
	UserTelegramID int64 `gorm:"column:usuario_id;primaryKey"`
	SourceID       uint  `gorm:"column:fuente_id;primaryKey"`
}

// TableName returns the database table name for UserSource.
func (UserSource) TableName() string { return "UsuarioFuentes" }

// UserCategory links a user to a selected category.
type UserCategory struct {
	UserTelegramID int64 `gorm:"column:usuario_telegram_id;primaryKey"`
	CategoryID     uint  `gorm:"column:categoria_id;primaryKey"`
}

// TableName returns the database table name for UserCategory.
func (UserCategory) TableName() string { return "PreferenciasUsuarioCategoria" }
