package customer

const getCustomersByUserSQL = `
SELECT customer_id, user_id, first_name, last_name, email, phone, address
FROM customer
WHERE user_id = ?
ORDER BY rowid
`

const getProjectRefsByUserSQL = `
SELECT p.project_id, p.project_name, p.customer_id
FROM project p
JOIN customer c ON c.customer_id = p.customer_id
WHERE c.user_id = ?
ORDER BY p.rowid
`

const getCustomerSQL = `
SELECT customer_id, user_id, first_name, last_name, email, phone, address
FROM customer
WHERE customer_id = ?
`

const createCustomerSQL = `
INSERT INTO customer (
    customer_id, user_id, first_name, last_name, email, phone, address
) VALUES (?, ?, ?, ?, ?, ?, ?)
`

// NULL parameters keep the stored value
const patchCustomerSQL = `
UPDATE customer
SET first_name = COALESCE(?, first_name),
    last_name = COALESCE(?, last_name),
    email = COALESCE(?, email),
    phone = COALESCE(?, phone),
    address = COALESCE(?, address)
WHERE customer_id = ?
`

const deleteCustomerSQL = `
DELETE FROM customer
WHERE customer_id = ?
`

const customerOwnerSQL = `
SELECT user_id
FROM customer
WHERE customer_id = ?
`
