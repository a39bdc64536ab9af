package repository

import (
	"auction-marketplace/internal/auctionerrors"
	model "auction-marketplace/internal/models"
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

//go:embed schema.sql
var schema string

const uniqueViolation = "23505"

const (
	getAuctionQuery     = `SELECT id, title, description, category_id, seller_id, end_date, reserve, COALESCE(image_filename, '') FROM auction WHERE id = $1`
	createAuctionQuery  = `INSERT INTO auction (title, description, end_date, reserve, seller_id, category_id) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	updateAuctionQuery  = `UPDATE auction SET title = $2, description = $3, end_date = $4, reserve = $5, category_id = $6 WHERE id = $1`
	deleteAuctionQuery  = `DELETE FROM auction WHERE id = $1`
	setImageQuery       = `UPDATE auction SET image_filename = $2 WHERE id = $1`
	titleTakenQuery     = `SELECT EXISTS (SELECT 1 FROM auction WHERE title = $1 AND seller_id = $2 AND id != $3)`
	listAuctionsQuery   = `SELECT a.id, a.title, a.description, a.category_id, a.seller_id, a.end_date, a.reserve, COALESCE(a.image_filename, '') FROM auction a WHERE a.title ILIKE $1 OR a.description ILIKE $1 ORDER BY `
	highestBidQuery     = `SELECT MAX(amount) FROM auction_bid WHERE auction_id = $1`
	bidCountQuery       = `SELECT COUNT(*) FROM auction_bid WHERE auction_id = $1`
	hasBidFromQuery     = `SELECT EXISTS (SELECT 1 FROM auction_bid WHERE auction_id = $1 AND user_id = $2)`
	bidsByAuctionQuery  = `SELECT auction_id, user_id, amount, timestamp FROM auction_bid WHERE auction_id = $1 ORDER BY amount DESC, timestamp ASC, id ASC`
	lockAuctionQuery    = `SELECT id FROM auction WHERE id = $1 FOR UPDATE`
	insertBidQuery      = `INSERT INTO auction_bid (auction_id, user_id, amount, timestamp) VALUES ($1, $2, $3, $4)`
	getCategoryQuery    = `SELECT id, name FROM category WHERE id = $1`
	listCategoriesQuery = `SELECT id, name FROM category ORDER BY id ASC`
	getUserQuery        = `SELECT id, email, first_name, last_name, COALESCE(auth_token, '') FROM users WHERE id = $1`
	getUserByTokenQuery = `SELECT id, email, first_name, last_name, COALESCE(auth_token, '') FROM users WHERE auth_token = $1`
)

// sortColumns whitelists the ORDER BY expressions a listing may use
var sortColumns = map[model.SortField]string{
	model.SortByTitle:   "LOWER(a.title)",
	model.SortByBids:    "(SELECT COUNT(*) FROM auction_bid b WHERE b.auction_id = a.id)",
	model.SortByEndDate: "a.end_date",
	model.SortByReserve: "a.reserve",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// PostgresRepo implements AuctionDB, CategoryDB and UserDB on PostgreSQL
type PostgresRepo struct {
	db *sql.DB
}

// NewPostgresRepo wraps an open database handle
func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

// OpenPostgres opens and pings a PostgreSQL connection pool
func OpenPostgres(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

// EnsureSchema creates the tables if they do not exist
func (r *PostgresRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// executeTransaction runs fn inside a transaction, rolling back on error or panic
func (r *PostgresRepo) executeTransaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx failed: %w, rollback failed: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAuction(row rowScanner) (model.Auction, error) {
	var a model.Auction
	err := row.Scan(&a.AuctionID, &a.Title, &a.Description, &a.CategoryID, &a.SellerID, &a.EndDate, &a.Reserve, &a.ImageFilename)
	return a, err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// GetAuction returns the auction with the given ID
func (r *PostgresRepo) GetAuction(ctx context.Context, auctionID int64) (model.Auction, error) {
	a, err := scanAuction(r.db.QueryRowContext(ctx, getAuctionQuery, auctionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Auction{}, fmt.Errorf("get auction %d: %w", auctionID, auctionerrors.ErrAuctionNotFound)
		}
		return model.Auction{}, fmt.Errorf("failed to get auction %d: %w", auctionID, err)
	}
	return a, nil
}

// CreateAuction inserts an auction and returns its generated ID
func (r *PostgresRepo) CreateAuction(ctx context.Context, auction model.Auction) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, createAuctionQuery,
		auction.Title,
		auction.Description,
		auction.EndDate,
		auction.Reserve,
		auction.SellerID,
		auction.CategoryID,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("create auction %q: %w", auction.Title, auctionerrors.ErrDuplicateTitle)
		}
		return 0, fmt.Errorf("failed to create auction: %w", err)
	}
	return id, nil
}

// UpdateAuction overwrites the mutable auction columns while the auction has no bids
func (r *PostgresRepo) UpdateAuction(ctx context.Context, auction model.Auction) error {
	return r.executeTransaction(ctx, func(tx *sql.Tx) error {
		if err := lockWithoutBids(ctx, tx, auction.AuctionID, auctionerrors.ErrChangeWithBids); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, updateAuctionQuery,
			auction.AuctionID,
			auction.Title,
			auction.Description,
			auction.EndDate,
			auction.Reserve,
			auction.CategoryID,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("update auction %d: %w", auction.AuctionID, auctionerrors.ErrDuplicateTitle)
			}
			return fmt.Errorf("failed to update auction %d: %w", auction.AuctionID, err)
		}
		return nil
	})
}

// DeleteAuction removes an auction while it has no bids
func (r *PostgresRepo) DeleteAuction(ctx context.Context, auctionID int64) error {
	return r.executeTransaction(ctx, func(tx *sql.Tx) error {
		if err := lockWithoutBids(ctx, tx, auctionID, auctionerrors.ErrDeleteWithBids); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, deleteAuctionQuery, auctionID); err != nil {
			return fmt.Errorf("failed to delete auction %d: %w", auctionID, err)
		}
		return nil
	})
}

// lockAuction takes the auction row lock that bids, updates and deletes share
func lockAuction(ctx context.Context, tx *sql.Tx, auctionID int64) error {
	var id int64
	if err := tx.QueryRowContext(ctx, lockAuctionQuery, auctionID).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("lock auction %d: %w", auctionID, auctionerrors.ErrAuctionNotFound)
		}
		return fmt.Errorf("failed to lock auction %d: %w", auctionID, err)
	}
	return nil
}

// lockWithoutBids locks the auction row and fails with hasBids if any bid is
// recorded. The count runs after the lock is held, so it sees every bid
// committed before the lock was granted.
func lockWithoutBids(ctx context.Context, tx *sql.Tx, auctionID int64, hasBids error) error {
	if err := lockAuction(ctx, tx, auctionID); err != nil {
		return err
	}
	count, err := bidCount(ctx, tx, auctionID)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("auction %d: %w", auctionID, hasBids)
	}
	return nil
}

// SetAuctionImage records the stored image filename for an auction
func (r *PostgresRepo) SetAuctionImage(ctx context.Context, auctionID int64, filename string) error {
	result, err := r.db.ExecContext(ctx, setImageQuery, auctionID, filename)
	if err != nil {
		return fmt.Errorf("failed to set image for auction %d: %w", auctionID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("set image for auction %d: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	return nil
}

// TitleTaken reports whether the seller already has another auction with this title
func (r *PostgresRepo) TitleTaken(ctx context.Context, title string, sellerID, excludeAuctionID int64) (bool, error) {
	var taken bool
	if err := r.db.QueryRowContext(ctx, titleTakenQuery, title, sellerID, excludeAuctionID).Scan(&taken); err != nil {
		return false, fmt.Errorf("failed to check title uniqueness: %w", err)
	}
	return taken, nil
}

// ListAuctions returns auctions whose title or description contains pattern
// (case-insensitive) in the requested order. Ties are broken by ID.
func (r *PostgresRepo) ListAuctions(ctx context.Context, pattern string, order model.SortOrder) ([]model.Auction, error) {
	query := listAuctionsQuery + orderClause(order)

	rows, err := r.db.QueryContext(ctx, query, "%"+likeEscaper.Replace(pattern)+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to list auctions: %w", err)
	}
	defer rows.Close()

	var auctions []model.Auction
	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan auction: %w", err)
		}
		auctions = append(auctions, a)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating auctions: %w", err)
	}
	return auctions, nil
}

func orderClause(order model.SortOrder) string {
	column, ok := sortColumns[order.Field]
	if !ok {
		column = sortColumns[model.SortByEndDate]
	}
	direction := "ASC"
	if order.Descending {
		direction = "DESC"
	}
	return column + " " + direction + ", a.id ASC"
}

// GetHighestBid returns the highest accepted amount for an auction
func (r *PostgresRepo) GetHighestBid(ctx context.Context, auctionID int64) (int64, error) {
	return highestBid(ctx, r.db, auctionID)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func highestBid(ctx context.Context, q queryRower, auctionID int64) (int64, error) {
	var highest sql.NullInt64
	if err := q.QueryRowContext(ctx, highestBidQuery, auctionID).Scan(&highest); err != nil {
		return 0, fmt.Errorf("failed to get highest bid for auction %d: %w", auctionID, err)
	}
	if !highest.Valid {
		return 0, fmt.Errorf("get highest bid for auction %d: %w", auctionID, auctionerrors.ErrNoBids)
	}
	return highest.Int64, nil
}

// GetBidCount returns the number of bids placed on an auction
func (r *PostgresRepo) GetBidCount(ctx context.Context, auctionID int64) (int, error) {
	return bidCount(ctx, r.db, auctionID)
}

func bidCount(ctx context.Context, q queryRower, auctionID int64) (int, error) {
	var count int
	if err := q.QueryRowContext(ctx, bidCountQuery, auctionID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count bids for auction %d: %w", auctionID, err)
	}
	return count, nil
}

// HasBidFrom reports whether the bidder has placed at least one bid on the auction
func (r *PostgresRepo) HasBidFrom(ctx context.Context, auctionID, bidderID int64) (bool, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, hasBidFromQuery, auctionID, bidderID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check bids from user %d: %w", bidderID, err)
	}
	return exists, nil
}

// GetBidsByAuction returns all bids for an auction, highest amount first
func (r *PostgresRepo) GetBidsByAuction(ctx context.Context, auctionID int64) ([]model.Bid, error) {
	rows, err := r.db.QueryContext(ctx, bidsByAuctionQuery, auctionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bids: %w", err)
	}
	defer rows.Close()

	var bids []model.Bid
	for rows.Next() {
		var b model.Bid
		if err := rows.Scan(&b.AuctionID, &b.BidderID, &b.Amount, &b.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan bid: %w", err)
		}
		bids = append(bids, b)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bids: %w", err)
	}
	return bids, nil
}

/*
RecordBidIfHigher appends a bid only if it beats the current highest bid.
 1. Lock the auction row so concurrent bids on the same auction serialise
 2. Read the current highest amount under that lock
 3. Insert the bid only if it is strictly greater
*/
func (r *PostgresRepo) RecordBidIfHigher(ctx context.Context, bid model.Bid) error {
	return r.executeTransaction(ctx, func(tx *sql.Tx) error {
		if err := lockAuction(ctx, tx, bid.AuctionID); err != nil {
			return err
		}

		highest, err := highestBid(ctx, tx, bid.AuctionID)
		if err != nil && !errors.Is(err, auctionerrors.ErrNoBids) {
			return err
		}
		if bid.Amount <= highest {
			return fmt.Errorf("record bid for auction %d: %w - current highest bid is %d", bid.AuctionID, auctionerrors.ErrBidTooLow, highest)
		}

		if _, err := tx.ExecContext(ctx, insertBidQuery, bid.AuctionID, bid.BidderID, bid.Amount, bid.Timestamp); err != nil {
			return fmt.Errorf("failed to insert bid: %w", err)
		}
		return nil
	})
}

// GetCategory returns the category with the given ID
func (r *PostgresRepo) GetCategory(ctx context.Context, categoryID int64) (model.Category, error) {
	var c model.Category
	if err := r.db.QueryRowContext(ctx, getCategoryQuery, categoryID).Scan(&c.CategoryID, &c.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Category{}, fmt.Errorf("get category %d: %w", categoryID, auctionerrors.ErrCategoryNotFound)
		}
		return model.Category{}, fmt.Errorf("failed to get category %d: %w", categoryID, err)
	}
	return c, nil
}

// ListCategories returns all categories ordered by ID
func (r *PostgresRepo) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := r.db.QueryContext(ctx, listCategoriesQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.CategoryID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return categories, nil
}

// GetUser returns the user with the given ID
func (r *PostgresRepo) GetUser(ctx context.Context, userID int64) (model.User, error) {
	return r.getUser(ctx, getUserQuery, userID)
}

// GetUserByToken returns the user holding the given auth token
func (r *PostgresRepo) GetUserByToken(ctx context.Context, token string) (model.User, error) {
	if token == "" {
		return model.User{}, fmt.Errorf("get user by token: %w", auctionerrors.ErrUserNotFound)
	}
	return r.getUser(ctx, getUserByTokenQuery, token)
}

func (r *PostgresRepo) getUser(ctx context.Context, query string, arg any) (model.User, error) {
	var u model.User
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&u.UserID, &u.Email, &u.FirstName, &u.LastName, &u.AuthToken)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, fmt.Errorf("get user: %w", auctionerrors.ErrUserNotFound)
		}
		return model.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}
