package sqlinline

const jobColumns = "id, subject_id, items, status, progress, total_items, error_message, created_at, updated_at, completed_at"

const QJobInsert = `--sql 8af6a21b-13b0-4226-bc7d-c304310ac467
insert into generation_jobs (id, subject_id, items, status, progress, total_items)
values ($1, $2, $3, 'pending', 0, $4);
`

// QJobClaim atomically picks the oldest pending job and moves it to
// processing, so multiple workers never double-claim.
const QJobClaim = `--sql 09a1ce7a-50a3-4604-b806-016834ebbfce
with next_job as (
    select id
    from generation_jobs
    where status = 'pending'
    order by created_at asc
    for update skip locked
    limit 1
),
claimed as (
    update generation_jobs
    set status = 'processing', updated_at = now()
    where id in (select id from next_job)
    returning ` + jobColumns + `
)
select * from claimed;
`

// QJobUpdateProgress only moves progress forward and only while processing,
// keeping the counter monotonic even under a duplicate update.
const QJobUpdateProgress = `--sql a248e8f8-0e74-4934-a8aa-d422ab6839f6
update generation_jobs
set progress = greatest(progress, $2), updated_at = now()
where id = $1 and status = 'processing';
`

const QJobComplete = `--sql 9498b124-feea-435c-a846-ffbc9e78af04
update generation_jobs
set status = 'completed', completed_at = now(), updated_at = now()
where id = $1 and status = 'processing';
`

const QJobFail = `--sql 1fa4ad28-f0a2-4758-81ce-6bab1ecfa367
update generation_jobs
set status = 'failed', error_message = $2, completed_at = now(), updated_at = now()
where id = $1 and status not in ('completed', 'failed');
`

const QJobGetByID = `--sql 573746ef-1696-46f9-99e9-0df36a9373af
select ` + jobColumns + `
from generation_jobs
where id = $1;
`

// QJobRequeueStuck resets jobs abandoned mid-processing (e.g. worker crash)
// back to pending so they are picked up again.
const QJobRequeueStuck = `--sql 1c75b1ab-8338-411c-ad76-58121d20d6c4
update generation_jobs
set status = 'pending', updated_at = now()
where status = 'processing' and updated_at < $1;
`
