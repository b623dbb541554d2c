package serviceimpl

import (
	"taskboard/domain/models"
	"taskboard/pkg/apperror"
)

// ========== Board permission rules ==========
// admin ผ่านทุกข้อผ่าน Principal.Has

func requireActor(actor *models.Principal) error {
	if actor == nil {
		return apperror.Forbidden("no principal on request")
	}
	return nil
}

// canTransition: admin, manage_tasks หรืออยู่ใน assignee set
func canTransition(actor *models.Principal, task *models.Task) bool {
	return actor.CanManageTasks() || task.HasAssignee(actor.ID)
}

// canEdit: admin, manage_tasks หรือเป็นคนสร้าง
func canEdit(actor *models.Principal, task *models.Task) bool {
	return actor.CanManageTasks() || task.CreatorID == actor.ID
}

// canSplit: admin, manage_tasks, creator หรือ assignee ของ parent
func canSplit(actor *models.Principal, task *models.Task) bool {
	return canEdit(actor, task) || task.HasAssignee(actor.ID)
}

// canLogEffort follows the transition rule and also needs log_effort
func canLogEffort(actor *models.Principal, task *models.Task) bool {
	return canTransition(actor, task) && actor.Has(models.CapLogEffort)
}
