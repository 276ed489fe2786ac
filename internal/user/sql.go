package user

const getUserSQL = `
SELECT user_id, email, password_hash, first_name, last_name, created_at
FROM app_user
WHERE user_id = ?
`

const getUserByEmailSQL = `
SELECT user_id, email, password_hash, first_name, last_name, created_at
FROM app_user
WHERE email = ?
`

const createUserSQL = `
INSERT INTO app_user (
    user_id, email, password_hash, first_name, last_name, created_at
) VALUES (?, ?, ?, ?, ?, ?)
`

const emailExistsSQL = `
SELECT EXISTS(
    SELECT 1 FROM app_user WHERE email = ?
)
`

const deleteAllUsersSQL = `
DELETE FROM app_user
`
