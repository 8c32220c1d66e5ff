package services

import (
	"fmt"
	"log"

	"uni-application-api/config"
	"uni-application-api/models"
)

// NotifyOfferLetterReceived emails the student that the offer letter arrived
// and can be downloaded. Errors are logged, never propagated; the transition
// has already committed.
func NotifyOfferLetterReceived(app *models.Application) {
	student, program, ok := loadStudentAndProgram(app)
	if !ok {
		return
	}

	subject := fmt.Sprintf("Offer letter received - %s", program.ProgramName)
	html := fmt.Sprintf(`<p>Dear %s,</p>
<p>Good news! We have received the offer letter for your application to
<strong>%s</strong> at <strong>%s</strong>.</p>
<p>Log in to your account to download it and follow the next steps of your
application.</p>`,
		student.FullName, program.ProgramName, program.UniversityName)

	if err := config.SendMail([]string{student.Email}, subject, html); err != nil {
		log.Printf("Warning: Failed to send offer letter email for application %d: %v", app.ApplicationID, err)
	}
}

// NotifyInterviewResult emails the student the interview outcome.
func NotifyInterviewResult(app *models.Application, result string) {
	student, program, ok := loadStudentAndProgram(app)
	if !ok {
		return
	}

	var subject, html string
	if result == ResultPass {
		subject = fmt.Sprintf("Interview passed - %s", program.ProgramName)
		html = fmt.Sprintf(`<p>Dear %s,</p>
<p>Congratulations! You passed the interview for <strong>%s</strong> at
<strong>%s</strong>. The CAS stage of your application is now being
prepared.</p>`,
			student.FullName, program.ProgramName, program.UniversityName)
	} else {
		subject = fmt.Sprintf("Application decision - %s", program.ProgramName)
		html = fmt.Sprintf(`<p>Dear %s,</p>
<p>We are sorry to inform you that your application to <strong>%s</strong> at
<strong>%s</strong> was not successful following the interview.</p>`,
			student.FullName, program.ProgramName, program.UniversityName)
	}

	if err := config.SendMail([]string{student.Email}, subject, html); err != nil {
		log.Printf("Warning: Failed to send interview result email for application %d: %v", app.ApplicationID, err)
	}
}

func loadStudentAndProgram(app *models.Application) (*models.Student, *models.Program, bool) {
	var student models.Student
	if err := config.DB.Where("student_id = ?", app.StudentID).First(&student).Error; err != nil {
		log.Printf("Warning: Failed to load student %d for notification: %v", app.StudentID, err)
		return nil, nil, false
	}

	var program models.Program
	if err := config.DB.Where("program_id = ?", app.ProgramID).First(&program).Error; err != nil {
		log.Printf("Warning: Failed to load program %d for notification: %v", app.ProgramID, err)
		return nil, nil, false
	}

	return &student, &program, true
}
