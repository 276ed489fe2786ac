package project

const getProjectSQL = `
SELECT project_id, customer_id, project_name,
       dog_diagnosis, dog_accessories, dog_environmental_management, dog_summary
FROM project
WHERE project_id = ?
`

const getNotesSQL = `
SELECT note_id, creation_time, description
FROM project_note
WHERE project_id = ?
ORDER BY position
`

const getGoalsSQL = `
SELECT goal_id, title, description, start_time, end_time
FROM goal
WHERE project_id = ?
ORDER BY position
`

const getTasksSQL = `
SELECT t.task_id, t.goal_id, t.title, t.completed
FROM task t
JOIN goal g ON g.goal_id = t.goal_id
WHERE g.project_id = ?
ORDER BY g.position, t.position
`

const createProjectSQL = `
INSERT INTO project (
    project_id, customer_id, project_name,
    dog_diagnosis, dog_accessories, dog_environmental_management, dog_summary
) VALUES (?, ?, ?, ?, ?, ?, ?)
`

const createNoteSQL = `
INSERT INTO project_note (
    note_id, project_id, position, creation_time, description
) VALUES (?, ?, ?, ?, ?)
`

const createGoalSQL = `
INSERT INTO goal (
    goal_id, project_id, position, title, description, start_time, end_time
) VALUES (?, ?, ?, ?, ?, ?, ?)
`

const createTaskSQL = `
INSERT INTO task (
    task_id, goal_id, position, title, completed
) VALUES (?, ?, ?, ?, ?)
`

// NULL parameters keep the stored value
const patchProjectSQL = `
UPDATE project
SET project_name = COALESCE(?, project_name),
    dog_diagnosis = COALESCE(?, dog_diagnosis),
    dog_accessories = COALESCE(?, dog_accessories),
    dog_environmental_management = COALESCE(?, dog_environmental_management),
    dog_summary = COALESCE(?, dog_summary)
WHERE project_id = ?
`

const getNoteIDsSQL = `
SELECT note_id
FROM project_note
WHERE project_id = ?
`

// goal and task ids share one set; uuids never collide across the two
const getGoalAndTaskIDsSQL = `
SELECT goal_id FROM goal WHERE project_id = ?
UNION ALL
SELECT t.task_id
FROM task t
JOIN goal g ON g.goal_id = t.goal_id
WHERE g.project_id = ?
`

const deleteNotesSQL = `
DELETE FROM project_note
WHERE project_id = ?
`

// tasks follow by cascade
const deleteGoalsSQL = `
DELETE FROM goal
WHERE project_id = ?
`

const projectOwnerSQL = `
SELECT c.user_id
FROM project p
JOIN customer c ON c.customer_id = p.customer_id
WHERE p.project_id = ?
`

const customerOwnerSQL = `
SELECT user_id
FROM customer
WHERE customer_id = ?
`
