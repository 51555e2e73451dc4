package sqlite

type relation struct {
	name string
	ddl  string
}

// schema is ordered so referenced tables are created first.
var schema = []relation{
	{
		name: "users",
		ddl: `CREATE TABLE IF NOT EXISTS users (
	username TEXT PRIMARY KEY,
	password TEXT NOT NULL,
	registration_date TEXT NOT NULL
)`,
	},
	{
		name: "login_history",
		ddl: `CREATE TABLE IF NOT EXISTS login_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL,
	login_time TEXT NOT NULL,
	logout_time TEXT,
	FOREIGN KEY (username) REFERENCES users(username)
)`,
	},
	{
		name: "file_tracking",
		ddl: `CREATE TABLE IF NOT EXISTS file_tracking (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL,
	filename TEXT NOT NULL,
	upload_time TEXT NOT NULL,
	game_channel TEXT NOT NULL,
	FOREIGN KEY (username) REFERENCES users(username)
)`,
	},
}
